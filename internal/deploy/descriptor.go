package deploy

import (
	"strconv"
	"strings"

	"endpointd/internal/config"
	"endpointd/internal/controlplane"
)

// modelNamePrefix matches the repository name of the serving container.
const modelNamePrefix = "huggingface-pytorch-tgi-inference"

// EndpointDescriptor identifies the three remote resources of one deployment
// and their sizing. It is not modified once submitted.
type EndpointDescriptor struct {
	EndpointName       string
	EndpointConfigName string
	ModelName          string
	// InferenceComponentName is optional; the endpoint name is used when empty.
	InferenceComponentName string
	InstanceType           string
	Replicas               int
	Accelerators           int
	CPUs                   int
	MemoryMB               int
}

// NewDescriptor builds a descriptor from resolved configuration.
func NewDescriptor(cfg config.Config) EndpointDescriptor {
	return EndpointDescriptor{
		EndpointName:           cfg.EndpointName,
		EndpointConfigName:     cfg.EndpointConfigName,
		ModelName:              ResolveModelName(cfg.EndpointName, cfg.DeployTimestamp),
		InferenceComponentName: cfg.ResolvedInferenceComponentName(),
		InstanceType:           cfg.InstanceType,
		Replicas:               cfg.Copies,
		Accelerators:           cfg.GPUs,
		CPUs:                   cfg.CPUs,
		MemoryMB:               cfg.MemoryMB,
	}
}

// ResolveModelName is deterministic: the same inputs always name the same
// model, which is what lets a redeploy find and replace it.
func ResolveModelName(endpointName, deployTimestamp string) string {
	if ts := strings.TrimSpace(deployTimestamp); ts != "" {
		return modelNamePrefix + "-" + ts
	}
	if endpointName == "" {
		return ""
	}
	return endpointName + "-model"
}

// Resources returns the sizing attached to the configuration.
func (d EndpointDescriptor) Resources() controlplane.ResourceRequirements {
	return controlplane.ResourceRequirements{
		Copies:       d.Replicas,
		Accelerators: d.Accelerators,
		CPUs:         d.CPUs,
		MemoryMB:     d.MemoryMB,
	}
}

func (d EndpointDescriptor) validate() error {
	switch {
	case strings.TrimSpace(d.EndpointName) == "":
		return ErrConfiguration("endpoint_name", "required")
	case strings.TrimSpace(d.EndpointConfigName) == "":
		return ErrConfiguration("endpoint_config_name", "required")
	case strings.TrimSpace(d.ModelName) == "":
		return ErrConfiguration("model_name", "required")
	case d.Replicas < 1:
		return ErrConfiguration("copies", "must be at least 1")
	case d.MemoryMB <= 0:
		return ErrConfiguration("memory_mb", "must be positive")
	}
	return nil
}

// ContainerConfig is the environment handed to the serving container.
type ContainerConfig struct {
	ModelID             string
	HubToken            string
	NumGPUs             int
	MaxInputLength      int
	MaxTotalTokens      int
	MaxBatchTotalTokens int
	Quantize            string
}

// ContainerConfigFrom extracts the container settings from cfg.
func ContainerConfigFrom(cfg config.Config) ContainerConfig {
	return ContainerConfig{
		ModelID:             cfg.HFModelID,
		HubToken:            cfg.HFToken,
		NumGPUs:             cfg.NumGPUs,
		MaxInputLength:      cfg.MaxInputLength,
		MaxTotalTokens:      cfg.MaxTotalTokens,
		MaxBatchTotalTokens: cfg.MaxBatchTotalTokens,
		Quantize:            cfg.Quantize,
	}
}

// Env renders the container environment. Unset values are left out so the
// container applies its own defaults.
func (c ContainerConfig) Env() map[string]string {
	env := map[string]string{}
	putStr := func(k, v string) {
		if v != "" {
			env[k] = v
		}
	}
	putInt := func(k string, v int) {
		if v > 0 {
			env[k] = strconv.Itoa(v)
		}
	}
	putStr("HF_MODEL_ID", c.ModelID)
	putStr("HUGGING_FACE_HUB_TOKEN", c.HubToken)
	putInt("SM_NUM_GPUS", c.NumGPUs)
	putInt("MAX_INPUT_LENGTH", c.MaxInputLength)
	putInt("MAX_TOTAL_TOKENS", c.MaxTotalTokens)
	putInt("MAX_BATCH_TOTAL_TOKENS", c.MaxBatchTotalTokens)
	// Prefill is bounded by the same budget as a whole batch.
	putInt("MAX_BATCH_PREFILL_TOKENS", c.MaxBatchTotalTokens)
	putStr("HF_MODEL_QUANTIZE", c.Quantize)
	return env
}
