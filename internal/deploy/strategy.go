package deploy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"endpointd/internal/controlplane"
)

// BackendKind tags a Strategy variant.
type BackendKind string

const KindHuggingFaceTGI BackendKind = "huggingface-tgi"

// DeployInput is everything a Strategy needs to provision one endpoint.
type DeployInput struct {
	Descriptor   EndpointDescriptor
	Image        string
	RoleARN      string
	Container    ContainerConfig
	Resources    controlplane.ResourceRequirements
	EndpointType controlplane.EndpointType
}

// Strategy provisions model, configuration and endpoint, strictly in that
// order. The first failing step aborts the call with a ProvisionError.
type Strategy interface {
	Kind() BackendKind
	Deploy(ctx context.Context, in DeployInput) error
}

// NewStrategy resolves kind to its variant. Empty selects KindHuggingFaceTGI.
func NewStrategy(kind BackendKind, cp controlplane.ControlPlane, logger *zerolog.Logger) (Strategy, error) {
	switch kind {
	case "", KindHuggingFaceTGI:
		return NewHuggingFaceStrategy(cp, logger), nil
	default:
		return nil, ErrConfiguration("backend", fmt.Sprintf("unknown deployment backend %q", kind))
	}
}
