package controlplane

import (
	"context"
	"fmt"
	"strings"
)

// EndpointType selects how a model is hosted behind an endpoint.
type EndpointType string

const (
	// EndpointTypeInferenceComponentBased hosts the model as an inference
	// component on the endpoint's instances.
	EndpointTypeInferenceComponentBased EndpointType = "inference-component-based"
	// EndpointTypeModelBased binds the model directly to the production variant.
	EndpointTypeModelBased EndpointType = "model-based"
)

// ParseEndpointType maps a CLI/config value to an EndpointType. Empty selects
// the inference-component-based default.
func ParseEndpointType(s string) (EndpointType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(EndpointTypeInferenceComponentBased), "inference_component_based":
		return EndpointTypeInferenceComponentBased, nil
	case string(EndpointTypeModelBased), "model_based":
		return EndpointTypeModelBased, nil
	default:
		return "", fmt.Errorf("unsupported endpoint type: %q", s)
	}
}

// ResourceKind names one of the remote resources managed here.
type ResourceKind string

const (
	KindEndpoint           ResourceKind = "endpoint"
	KindEndpointConfig     ResourceKind = "endpoint-config"
	KindModel              ResourceKind = "model"
	KindInferenceComponent ResourceKind = "inference-component"
)

// ResourceRequirements is the sizing attached to a configuration.
type ResourceRequirements struct {
	Copies       int
	Accelerators int
	CPUs         int
	MemoryMB     int
}

// ModelSpec registers a model backed by a container image.
type ModelSpec struct {
	Name        string
	Image       string
	RoleARN     string
	Environment map[string]string
}

// EndpointConfigSpec binds a model and an instance shape under one name.
type EndpointConfigSpec struct {
	Name          string
	ModelName     string
	InstanceType  string
	InstanceCount int
	Resources     ResourceRequirements
	Type          EndpointType
	RoleARN       string
}

// EndpointSpec creates a routable endpoint from a configuration.
type EndpointSpec struct {
	Name       string
	ConfigName string
	Type       EndpointType
	// ModelName and Resources are only consumed by inference-component-based
	// hosting, where the model is attached after the endpoint is in service.
	ModelName              string
	Resources              ResourceRequirements
	InferenceComponentName string
}

// EndpointDescription is the subset of a describe-endpoint answer used here.
type EndpointDescription struct {
	Name       string
	ConfigName string
	Status     string
}

// EndpointConfigDescription is the subset of a describe-endpoint-config answer.
type EndpointConfigDescription struct {
	Name string
	// ModelNames lists the models referenced by the production variants, in
	// variant order. Empty for inference-component-based configurations.
	ModelNames []string
}

// ModelDescription is the subset of a describe-model answer.
type ModelDescription struct {
	Name  string
	Image string
}

// ControlPlane is the remote API that owns endpoints, configurations and
// models. Describe calls report absence with an error satisfying IsNotFound.
type ControlPlane interface {
	DescribeEndpoint(ctx context.Context, name string) (EndpointDescription, error)
	DeleteEndpoint(ctx context.Context, name string) error
	CreateEndpoint(ctx context.Context, spec EndpointSpec) error

	DescribeEndpointConfig(ctx context.Context, name string) (EndpointConfigDescription, error)
	DeleteEndpointConfig(ctx context.Context, name string) error
	CreateEndpointConfig(ctx context.Context, spec EndpointConfigSpec) error

	DescribeModel(ctx context.Context, name string) (ModelDescription, error)
	DeleteModel(ctx context.Context, name string) error
	CreateModel(ctx context.Context, spec ModelSpec) error
}
