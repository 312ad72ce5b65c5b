package deploy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"endpointd/internal/config"
)

func TestResolveModelName(t *testing.T) {
	cases := []struct {
		endpoint, ts, want string
	}{
		{"ep1", "", "ep1-model"},
		{"ep1", "1718000000", "huggingface-pytorch-tgi-inference-1718000000"},
		{"ep1", "  ", "ep1-model"},
		{"", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ResolveModelName(c.endpoint, c.ts), "%q/%q", c.endpoint, c.ts)
	}
}

func TestNewDescriptorFromConfig(t *testing.T) {
	cfg := config.Config{
		EndpointName:   "ep1",
		InstanceType:   "ml.g5.12xlarge",
		Copies:         2,
		GPUs:           4,
		CPUs:           8,
		ControlPlane:   config.ControlPlaneMemory,
		HFModelID:      "mistralai/Mistral-7B",
		MaxInputLength: 1024,
	}
	cfg.ApplyDefaults()
	d := NewDescriptor(cfg)

	assert.Equal(t, "ep1-config", d.EndpointConfigName)
	assert.Equal(t, "ep1-model", d.ModelName)
	assert.Equal(t, "ep1", d.InferenceComponentName)
	assert.Equal(t, 2, d.Resources().Copies)
	assert.Equal(t, 4, d.Resources().Accelerators)
	assert.Equal(t, config.DefaultMemoryMB, d.Resources().MemoryMB)
}

func TestContainerEnv(t *testing.T) {
	env := ContainerConfig{
		ModelID:             "mistralai/Mistral-7B",
		HubToken:            "hf_x",
		NumGPUs:             4,
		MaxInputLength:      1024,
		MaxTotalTokens:      2048,
		MaxBatchTotalTokens: 8192,
		Quantize:            "bitsandbytes",
	}.Env()

	assert.Equal(t, map[string]string{
		"HF_MODEL_ID":              "mistralai/Mistral-7B",
		"HUGGING_FACE_HUB_TOKEN":   "hf_x",
		"SM_NUM_GPUS":              "4",
		"MAX_INPUT_LENGTH":         "1024",
		"MAX_TOTAL_TOKENS":         "2048",
		"MAX_BATCH_TOTAL_TOKENS":   "8192",
		"MAX_BATCH_PREFILL_TOKENS": "8192",
		"HF_MODEL_QUANTIZE":        "bitsandbytes",
	}, env)

	assert.Empty(t, ContainerConfig{}.Env())
}

func TestImageResolvers(t *testing.T) {
	ctx := context.Background()

	uri, err := ImageResolverFor("", "us-east-1", "2.3.1").ImageURI(ctx)
	require.NoError(t, err)
	assert.Equal(t, "763104351884.dkr.ecr.us-east-1.amazonaws.com/huggingface-pytorch-tgi-inference:2.4.0-tgi2.3.1-gpu-py311-cu124-ubuntu22.04", uri)

	uri, err = TGIImageResolver{Region: "cn-north-1", Version: "2.3.1"}.ImageURI(ctx)
	require.NoError(t, err)
	assert.Contains(t, uri, "727897471807.dkr.ecr.cn-north-1.amazonaws.com.cn/")

	uri, err = ImageResolverFor("my/image:1", "", "").ImageURI(ctx)
	require.NoError(t, err)
	assert.Equal(t, "my/image:1", uri)

	_, err = TGIImageResolver{Region: "us-east-1", Version: "9.9.9"}.ImageURI(ctx)
	assert.True(t, IsConfiguration(err))
	_, err = TGIImageResolver{Version: "2.3.1"}.ImageURI(ctx)
	assert.True(t, IsConfiguration(err))
	_, err = StaticImage("").ImageURI(ctx)
	assert.True(t, IsConfiguration(err))
}
