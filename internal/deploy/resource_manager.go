package deploy

import (
	"context"

	"endpointd/internal/controlplane"
)

// ResourceManager answers existence questions by describing the remote
// resource. Nothing is cached: every call reflects current remote state.
type ResourceManager struct {
	cp controlplane.ControlPlane
}

func NewResourceManager(cp controlplane.ControlPlane) *ResourceManager {
	return &ResourceManager{cp: cp}
}

// EndpointExists returns false only when the control plane answers
// not-found. Any other failure is returned unchanged.
func (r *ResourceManager) EndpointExists(ctx context.Context, name string) (bool, error) {
	_, err := r.cp.DescribeEndpoint(ctx, name)
	return exists(err)
}

// EndpointConfigExists has the EndpointExists contract for configurations.
func (r *ResourceManager) EndpointConfigExists(ctx context.Context, name string) (bool, error) {
	_, err := r.cp.DescribeEndpointConfig(ctx, name)
	return exists(err)
}

// ModelExists has the EndpointExists contract for models.
func (r *ResourceManager) ModelExists(ctx context.Context, name string) (bool, error) {
	_, err := r.cp.DescribeModel(ctx, name)
	return exists(err)
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case controlplane.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}
