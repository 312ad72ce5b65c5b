package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"endpointd/internal/controlplane"
	"endpointd/internal/deploy"
)

func newCreateEndpointCmd(a *app) *cobra.Command {
	var endpointType string
	cmd := &cobra.Command{
		Use:     "create-endpoint",
		Short:   "Tear down any existing deployment and provision model, configuration and endpoint",
		Example: "  endpointd create-endpoint --endpoint-type model-based",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := controlplane.ParseEndpointType(endpointType)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cp, err := a.controlPlaneClient(ctx)
			if err != nil {
				return err
			}
			svc := deploy.NewServiceFromConfig(a.cfg, cp, deploy.LogPublisher{Logger: log.Logger})
			return svc.CreateEndpoint(ctx, deploy.NewDescriptor(a.cfg), typ)
		},
	}
	cmd.Flags().StringVar(&endpointType, "endpoint-type", string(controlplane.EndpointTypeInferenceComponentBased),
		"Hosting mode: inference-component-based|model-based")
	return cmd
}
