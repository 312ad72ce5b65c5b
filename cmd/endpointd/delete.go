package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"endpointd/internal/deploy"
	"endpointd/pkg/types"
)

func newDeleteEndpointCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-endpoint",
		Short: "Delete the endpoint, its configuration and its model when they exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cp, err := a.controlPlaneClient(ctx)
			if err != nil {
				return err
			}
			svc := deploy.NewServiceFromConfig(a.cfg, cp, nil)
			model := deploy.ResolveModelName(a.cfg.EndpointName, a.cfg.DeployTimestamp)
			rep := svc.DeleteEndpoint(ctx, a.cfg.EndpointName, a.cfg.EndpointConfigName, model)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(teardownResponse(a.cfg.EndpointName, rep))
		},
	}
}

func teardownResponse(endpoint string, rep deploy.TeardownReport) types.TeardownResponse {
	out := types.TeardownResponse{Endpoint: endpoint, Clean: rep.Clean(), Resources: []types.ResourceResult{}}
	add := func(outcome deploy.Outcome, items []deploy.ResourceOutcome) {
		for _, it := range items {
			r := types.ResourceResult{Kind: string(it.Kind), Name: it.Name, Outcome: string(outcome)}
			if it.Err != nil {
				r.Error = it.Err.Error()
			}
			out.Resources = append(out.Resources, r)
		}
	}
	add(deploy.OutcomeRemoved, rep.Removed)
	add(deploy.OutcomeSkipped, rep.Skipped)
	add(deploy.OutcomeFailed, rep.Failed)
	return out
}
