package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"endpointd/internal/controlplane"
)

func TestCreateEndpoint_FreshDeploy(t *testing.T) {
	m := controlplane.NewMemory()
	pub := NewMemoryPublisher()
	svc := newTestService(m, pub)

	require.NoError(t, svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased))

	assert.Empty(t, m.CallsOf(deleteOps...), "fresh deploy must not delete anything")
	want := []controlplane.Call{
		{Op: controlplane.OpCreateModel, Name: "ep1-model"},
		{Op: controlplane.OpCreateEndpointConfig, Name: "ep1-config"},
		{Op: controlplane.OpCreateEndpoint, Name: "ep1"},
	}
	if diff := cmp.Diff(want, m.CallsOf(createOps...)); diff != "" {
		t.Fatalf("create calls (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{EventDeployStart, EventTeardownDone, EventDeployDone}, pub.Names())

	model, ok := m.Model("ep1-model")
	require.True(t, ok)
	assert.Equal(t, "registry/tgi:latest", model.Image)
	assert.Equal(t, "arn:aws:iam::123456789012:role/sagemaker", model.RoleARN)
	assert.Equal(t, "meta-llama/Llama-3.1-8B", model.Environment["HF_MODEL_ID"])

	cfg, ok := m.EndpointConfig("ep1-config")
	require.True(t, ok)
	assert.Equal(t, "ep1-model", cfg.ModelName)
	assert.Equal(t, controlplane.ResourceRequirements{Copies: 1, Accelerators: 1, CPUs: 2, MemoryMB: 5120}, cfg.Resources)
	assert.Equal(t, controlplane.EndpointTypeModelBased, cfg.Type)
}

func TestCreateEndpoint_RedeployDeletesThenCreatesInOrder(t *testing.T) {
	m := controlplane.NewMemory()
	seedDeployment(t, m)
	svc := newTestService(m, nil)

	require.NoError(t, svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased))

	mutations := append(append([]string{}, deleteOps...), createOps...)
	want := []controlplane.Call{
		{Op: controlplane.OpDeleteEndpoint, Name: "ep1"},
		{Op: controlplane.OpDeleteEndpointConfig, Name: "ep1-config"},
		{Op: controlplane.OpDeleteModel, Name: "ep1-model"},
		{Op: controlplane.OpCreateModel, Name: "ep1-model"},
		{Op: controlplane.OpCreateEndpointConfig, Name: "ep1-config"},
		{Op: controlplane.OpCreateEndpoint, Name: "ep1"},
	}
	if diff := cmp.Diff(want, m.CallsOf(mutations...)); diff != "" {
		t.Fatalf("mutating calls (-want +got):\n%s", diff)
	}
}

func TestCreateEndpoint_Idempotent(t *testing.T) {
	once := controlplane.NewMemory()
	twice := controlplane.NewMemory()
	ctx := context.Background()

	require.NoError(t, newTestService(once, nil).CreateEndpoint(ctx, testDescriptor(), controlplane.EndpointTypeInferenceComponentBased))
	svc := newTestService(twice, nil)
	require.NoError(t, svc.CreateEndpoint(ctx, testDescriptor(), controlplane.EndpointTypeInferenceComponentBased))
	require.NoError(t, svc.CreateEndpoint(ctx, testDescriptor(), controlplane.EndpointTypeInferenceComponentBased))

	for _, kind := range []controlplane.ResourceKind{controlplane.KindEndpoint, controlplane.KindEndpointConfig, controlplane.KindModel} {
		for _, name := range []string{"ep1", "ep1-config", "ep1-model"} {
			assert.Equal(t, once.Has(kind, name), twice.Has(kind, name), "%s %s", kind, name)
		}
	}
	a, _ := once.Endpoint("ep1")
	b, _ := twice.Endpoint("ep1")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("endpoint spec differs (-once +twice):\n%s", diff)
	}
}

func TestCreateEndpoint_MissingRoleMakesNoCalls(t *testing.T) {
	m := controlplane.NewMemory()
	pub := NewMemoryPublisher()
	svc := NewService(ServiceConfig{ControlPlane: m, Images: StaticImage("img"), Events: pub, Logger: &nopLogger})

	err := svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased)
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
	assert.Empty(t, m.Calls())
	assert.Empty(t, pub.Events())
}

func TestCreateEndpoint_InvalidDescriptorMakesNoCalls(t *testing.T) {
	m := controlplane.NewMemory()
	svc := newTestService(m, nil)
	d := testDescriptor()
	d.EndpointConfigName = ""

	err := svc.CreateEndpoint(context.Background(), d, controlplane.EndpointTypeModelBased)
	require.True(t, IsConfiguration(err), "got %v", err)
	assert.Empty(t, m.Calls())
}

func TestCreateEndpoint_DerivesModelNameFromTimestamp(t *testing.T) {
	m := controlplane.NewMemory()
	svc := NewService(ServiceConfig{
		ControlPlane:    m,
		Images:          StaticImage("img"),
		RoleARN:         "arn:role",
		DeployTimestamp: "1718000000",
		Logger:          &nopLogger,
	})
	d := testDescriptor()
	d.ModelName = ""

	require.NoError(t, svc.CreateEndpoint(context.Background(), d, controlplane.EndpointTypeModelBased))
	assert.True(t, m.Has(controlplane.KindModel, "huggingface-pytorch-tgi-inference-1718000000"))
}

func TestCreateEndpoint_StepFailureAborts(t *testing.T) {
	m := controlplane.NewMemory()
	pub := NewMemoryPublisher()
	boom := errors.New("ResourceLimitExceeded")
	m.Fail(controlplane.OpCreateEndpointConfig, "ep1-config", boom)
	svc := newTestService(m, pub)

	err := svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased)
	require.Error(t, err)
	var pe *ProvisionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, StepEndpointConfig, pe.Step)
	assert.Equal(t, "ep1-config", pe.Resource)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.CallsOf(controlplane.OpCreateEndpoint), "endpoint must not be created after a failed config")
	assert.Equal(t, EventDeployFailed, pub.Names()[len(pub.Names())-1])
}

func TestCreateEndpoint_TeardownFailureDoesNotAbort(t *testing.T) {
	m := controlplane.NewMemory()
	m.Fail(controlplane.OpDescribeModel, "", errors.New("throttled"))
	svc := newTestService(m, nil)

	require.NoError(t, svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased))
	assert.True(t, m.Has(controlplane.KindEndpoint, "ep1"))
}

func TestCreateEndpoint_ImageFailureIsReported(t *testing.T) {
	m := controlplane.NewMemory()
	svc := NewService(ServiceConfig{
		ControlPlane: m,
		Images:       TGIImageResolver{Region: "us-east-1", Version: "0.0.1"},
		RoleARN:      "arn:role",
		Logger:       &nopLogger,
	})
	err := svc.CreateEndpoint(context.Background(), testDescriptor(), controlplane.EndpointTypeModelBased)
	require.True(t, IsConfiguration(err), "got %v", err)
	assert.Empty(t, m.CallsOf(createOps...))
}

func TestDeleteEndpoint_ResolvesConfigFromLiveEndpoint(t *testing.T) {
	m := controlplane.NewMemory()
	seedDeployment(t, m)
	svc := newTestService(m, nil)

	rep := svc.DeleteEndpoint(context.Background(), "ep1", "stale-config", "")
	assert.True(t, rep.Clean())
	assert.Len(t, rep.Removed, 3)
	assert.False(t, m.Has(controlplane.KindEndpointConfig, "ep1-config"))
	assert.False(t, m.Has(controlplane.KindModel, "ep1-model"), "model resolved from the config")
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("", controlplane.NewMemory(), &nopLogger)
	require.NoError(t, err)
	assert.Equal(t, KindHuggingFaceTGI, s.Kind())

	_, err = NewStrategy("triton", controlplane.NewMemory(), &nopLogger)
	assert.True(t, IsConfiguration(err))
}
