package deploy

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"endpointd/internal/controlplane"
)

var nopLogger = zerolog.Nop()

// testDescriptor returns a fully sized descriptor for endpoint "ep1".
func testDescriptor() EndpointDescriptor {
	return EndpointDescriptor{
		EndpointName:       "ep1",
		EndpointConfigName: "ep1-config",
		ModelName:          "ep1-model",
		InstanceType:       "ml.g5.2xlarge",
		Replicas:           1,
		Accelerators:       1,
		CPUs:               2,
		MemoryMB:           5120,
	}
}

func newTestService(cp controlplane.ControlPlane, events EventPublisher) *Service {
	return NewService(ServiceConfig{
		ControlPlane: cp,
		Images:       StaticImage("registry/tgi:latest"),
		RoleARN:      "arn:aws:iam::123456789012:role/sagemaker",
		Container:    ContainerConfig{ModelID: "meta-llama/Llama-3.1-8B", NumGPUs: 1, Quantize: "bitsandbytes"},
		Events:       events,
		Logger:       &nopLogger,
	})
}

// seedDeployment creates the three resources of testDescriptor directly.
func seedDeployment(t *testing.T, m *controlplane.Memory) {
	t.Helper()
	svc := newTestService(m, nil)
	if err := svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m.ResetCalls()
}

var (
	deleteOps = []string{controlplane.OpDeleteEndpoint, controlplane.OpDeleteEndpointConfig, controlplane.OpDeleteModel}
	createOps = []string{controlplane.OpCreateModel, controlplane.OpCreateEndpointConfig, controlplane.OpCreateEndpoint}
)
