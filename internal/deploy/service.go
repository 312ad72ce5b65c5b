package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"endpointd/internal/config"
	"endpointd/internal/controlplane"
)

// ServiceConfig encapsulates all collaborators for Service construction.
type ServiceConfig struct {
	ControlPlane controlplane.ControlPlane
	// Strategy defaults to the Hugging Face TGI variant.
	Strategy Strategy
	Images   ImageResolver
	// RoleARN authorizes the model to pull its image. Required by CreateEndpoint.
	RoleARN         string
	Container       ContainerConfig
	DeployTimestamp string
	Events          EventPublisher
	Logger          *zerolog.Logger
}

// Service runs the clear-then-provision workflow for one endpoint. It
// assumes a single writer per endpoint name.
type Service struct {
	cp        controlplane.ControlPlane
	rm        *ResourceManager
	teardown  *Teardown
	strategy  Strategy
	images    ImageResolver
	roleARN   string
	container ContainerConfig
	timestamp string
	events    EventPublisher
	log       zerolog.Logger
}

// NewService constructs a Service from ServiceConfig.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		cp:        cfg.ControlPlane,
		rm:        NewResourceManager(cfg.ControlPlane),
		strategy:  cfg.Strategy,
		images:    cfg.Images,
		roleARN:   cfg.RoleARN,
		container: cfg.Container,
		timestamp: cfg.DeployTimestamp,
		events:    cfg.Events,
		log:       log.Logger,
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	}
	if s.strategy == nil {
		s.strategy = NewHuggingFaceStrategy(cfg.ControlPlane, &s.log)
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	s.teardown = NewTeardown(cfg.ControlPlane, &s.log)
	return s
}

// NewServiceFromConfig wires a Service from resolved configuration.
func NewServiceFromConfig(cfg config.Config, cp controlplane.ControlPlane, events EventPublisher) *Service {
	return NewService(ServiceConfig{
		ControlPlane:    cp,
		Images:          ImageResolverFor(cfg.ImageURI, cfg.Region, cfg.TGIVersion),
		RoleARN:         cfg.RoleARN,
		Container:       ContainerConfigFrom(cfg),
		DeployTimestamp: cfg.DeployTimestamp,
		Events:          events,
	})
}

// ResourceManager exposes the existence checks used by the service.
func (s *Service) ResourceManager() *ResourceManager { return s.rm }

// CreateEndpoint deletes whatever exists under desc's names and provisions
// model, configuration and endpoint again. Re-running it with the same
// inputs converges to the same resource set.
func (s *Service) CreateEndpoint(ctx context.Context, desc EndpointDescriptor, typ controlplane.EndpointType) error {
	if strings.TrimSpace(s.roleARN) == "" {
		return ErrConfiguration("role_arn", "an execution role is required to deploy")
	}
	if desc.ModelName == "" {
		desc.ModelName = ResolveModelName(desc.EndpointName, s.timestamp)
	}
	if err := desc.validate(); err != nil {
		return err
	}
	if s.images == nil {
		return ErrConfiguration("image_uri", "no image resolver configured")
	}
	if typ == "" {
		typ = controlplane.EndpointTypeInferenceComponentBased
	}
	logger := s.log.With().Str("endpoint", desc.EndpointName).Str("type", string(typ)).Logger()

	exists, err := s.rm.EndpointExists(ctx, desc.EndpointName)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("could not check for an existing endpoint")
	case exists:
		logger.Info().Msg("endpoint exists, redeploying")
	default:
		logger.Info().Msg("no existing endpoint, deploying fresh")
	}
	s.events.Publish(Event{Name: EventDeployStart, Endpoint: desc.EndpointName, Fields: map[string]any{
		"model":  desc.ModelName,
		"config": desc.EndpointConfigName,
		"type":   string(typ),
	}})

	rep := s.teardown.DeleteExisting(ctx, desc.EndpointName, desc.EndpointConfigName, desc.ModelName)
	s.events.Publish(Event{Name: EventTeardownDone, Endpoint: desc.EndpointName, Fields: map[string]any{
		"removed": len(rep.Removed),
		"skipped": len(rep.Skipped),
		"failed":  len(rep.Failed),
	}})

	image, err := s.images.ImageURI(ctx)
	if err != nil {
		return s.fail(desc, fmt.Errorf("resolve image: %w", err))
	}
	logger.Debug().Str("image", image).Msg("resolved serving image")

	err = s.strategy.Deploy(ctx, DeployInput{
		Descriptor:   desc,
		Image:        image,
		RoleARN:      s.roleARN,
		Container:    s.container,
		Resources:    desc.Resources(),
		EndpointType: typ,
	})
	if err != nil {
		return s.fail(desc, err)
	}
	s.events.Publish(Event{Name: EventDeployDone, Endpoint: desc.EndpointName, Fields: map[string]any{
		"model":   desc.ModelName,
		"backend": string(s.strategy.Kind()),
	}})
	logger.Info().Str("model", desc.ModelName).Msg("endpoint deployed")
	return nil
}

func (s *Service) fail(desc EndpointDescriptor, err error) error {
	s.events.Publish(Event{Name: EventDeployFailed, Endpoint: desc.EndpointName, Fields: map[string]any{"error": err.Error()}})
	return err
}

// DeleteEndpoint tears down a deployment. The configuration name is taken
// from the live endpoint when it exists, falling back to configName.
func (s *Service) DeleteEndpoint(ctx context.Context, endpointName, configName, modelName string) TeardownReport {
	if d, err := s.cp.DescribeEndpoint(ctx, endpointName); err == nil && d.ConfigName != "" {
		configName = d.ConfigName
	}
	return s.teardown.DeleteExisting(ctx, endpointName, configName, modelName)
}
