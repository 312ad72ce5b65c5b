package deploy

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"endpointd/internal/controlplane"
)

// HuggingFaceStrategy serves a Hugging Face model from the TGI container on
// the managed control plane.
type HuggingFaceStrategy struct {
	cp  controlplane.ControlPlane
	log zerolog.Logger
}

func NewHuggingFaceStrategy(cp controlplane.ControlPlane, logger *zerolog.Logger) *HuggingFaceStrategy {
	s := &HuggingFaceStrategy{cp: cp, log: log.Logger}
	if logger != nil {
		s.log = *logger
	}
	return s
}

func (s *HuggingFaceStrategy) Kind() BackendKind { return KindHuggingFaceTGI }

func (s *HuggingFaceStrategy) Deploy(ctx context.Context, in DeployInput) error {
	d := in.Descriptor
	typ := in.EndpointType
	if typ == "" {
		typ = controlplane.EndpointTypeInferenceComponentBased
	}

	err := s.step(StepModel, d.ModelName, func() error {
		return s.cp.CreateModel(ctx, controlplane.ModelSpec{
			Name:        d.ModelName,
			Image:       in.Image,
			RoleARN:     in.RoleARN,
			Environment: in.Container.Env(),
		})
	})
	if err != nil {
		return err
	}

	err = s.step(StepEndpointConfig, d.EndpointConfigName, func() error {
		return s.cp.CreateEndpointConfig(ctx, controlplane.EndpointConfigSpec{
			Name:          d.EndpointConfigName,
			ModelName:     d.ModelName,
			InstanceType:  d.InstanceType,
			InstanceCount: 1,
			Resources:     in.Resources,
			Type:          typ,
			RoleARN:       in.RoleARN,
		})
	})
	if err != nil {
		return err
	}

	return s.step(StepEndpoint, d.EndpointName, func() error {
		return s.cp.CreateEndpoint(ctx, controlplane.EndpointSpec{
			Name:                   d.EndpointName,
			ConfigName:             d.EndpointConfigName,
			Type:                   typ,
			ModelName:              d.ModelName,
			Resources:              in.Resources,
			InferenceComponentName: d.InferenceComponentName,
		})
	})
}

func (s *HuggingFaceStrategy) step(step Step, resource string, fn func() error) error {
	s.log.Info().Str("step", string(step)).Str("resource", resource).Msg("provisioning")
	err := fn()
	observeStep(step, err)
	if err != nil {
		s.log.Error().Err(err).Str("step", string(step)).Str("resource", resource).Msg("provisioning failed")
		return &ProvisionError{Step: step, Resource: resource, Err: err}
	}
	return nil
}
