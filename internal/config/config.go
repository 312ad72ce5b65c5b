package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Control plane backends.
const (
	ControlPlaneSageMaker = "sagemaker"
	ControlPlaneMemory    = "memory"
)

// Defaults applied by ApplyDefaults when the corresponding field is unset.
const (
	DefaultAddr                 = ":8080"
	DefaultLogLevel             = "info"
	DefaultCopies               = 1
	DefaultGPUs                 = 1
	DefaultCPUs                 = 2
	DefaultMemoryMB             = 5 * 1024
	DefaultMaxNewTokens         = 150
	DefaultTopP                 = 0.9
	DefaultTemperature          = 0.01
	DefaultTGIVersion           = "2.3.1"
	DefaultQuantize             = "bitsandbytes"
	DefaultDeleteWaitSeconds    = 600
	DefaultInServiceWaitSeconds = 1800
)

// Config holds every runtime parameter. It is populated once at startup
// (file, then environment), defaulted, validated, and then passed by value.
type Config struct {
	Region    string `json:"region" yaml:"region" toml:"region"`
	AccessKey string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`

	EndpointName           string `json:"endpoint_name" yaml:"endpoint_name" toml:"endpoint_name"`
	EndpointConfigName     string `json:"endpoint_config_name" yaml:"endpoint_config_name" toml:"endpoint_config_name"`
	InferenceComponentName string `json:"inference_component_name" yaml:"inference_component_name" toml:"inference_component_name"`
	DeployTimestamp        string `json:"deploy_timestamp" yaml:"deploy_timestamp" toml:"deploy_timestamp"`
	RoleARN                string `json:"role_arn" yaml:"role_arn" toml:"role_arn"`

	InstanceType string `json:"instance_type" yaml:"instance_type" toml:"instance_type"`
	Copies       int    `json:"copies" yaml:"copies" toml:"copies"`
	GPUs         int    `json:"gpus" yaml:"gpus" toml:"gpus"`
	CPUs         int    `json:"cpus" yaml:"cpus" toml:"cpus"`
	MemoryMB     int    `json:"memory_mb" yaml:"memory_mb" toml:"memory_mb"`

	HFModelID           string `json:"hf_model_id" yaml:"hf_model_id" toml:"hf_model_id"`
	HFToken             string `json:"hf_token" yaml:"hf_token" toml:"hf_token"`
	NumGPUs             int    `json:"sm_num_gpus" yaml:"sm_num_gpus" toml:"sm_num_gpus"`
	MaxInputLength      int    `json:"max_input_length" yaml:"max_input_length" toml:"max_input_length"`
	MaxTotalTokens      int    `json:"max_total_tokens" yaml:"max_total_tokens" toml:"max_total_tokens"`
	MaxBatchTotalTokens int    `json:"max_batch_total_tokens" yaml:"max_batch_total_tokens" toml:"max_batch_total_tokens"`
	Quantize            string `json:"quantize" yaml:"quantize" toml:"quantize"`
	ImageURI            string `json:"image_uri" yaml:"image_uri" toml:"image_uri"`
	TGIVersion          string `json:"tgi_version" yaml:"tgi_version" toml:"tgi_version"`

	MaxNewTokens int `json:"max_new_tokens" yaml:"max_new_tokens" toml:"max_new_tokens"`
	// TopP and Temperature are nil when unset; 0 is a valid temperature.
	TopP        *float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	Temperature *float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	// InferenceURL selects the HTTP inference client (a TGI-compatible
	// server) instead of the SageMaker runtime.
	InferenceURL string `json:"inference_url" yaml:"inference_url" toml:"inference_url"`

	ControlPlane         string   `json:"control_plane" yaml:"control_plane" toml:"control_plane"`
	DeleteWaitSeconds    int      `json:"delete_wait_seconds" yaml:"delete_wait_seconds" toml:"delete_wait_seconds"`
	InServiceWaitSeconds int      `json:"in_service_wait_seconds" yaml:"in_service_wait_seconds" toml:"in_service_wait_seconds"`
	Addr                 string   `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel             string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSOrigins          []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

type binding struct {
	env string
	set func(*Config, string) error
}

func str(f func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *f(c) = v; return nil }
}

func integer(f func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*f(c) = n
		return nil
	}
}

func float(f func(*Config) **float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*f(c) = &n
		return nil
	}
}

// bindings maps environment variable names to Config fields.
var bindings = []binding{
	{"AWS_REGION", str(func(c *Config) *string { return &c.Region })},
	{"AWS_ACCESS_KEY", str(func(c *Config) *string { return &c.AccessKey })},
	{"AWS_SECRET_KEY", str(func(c *Config) *string { return &c.SecretKey })},
	{"SAGEMAKER_ENDPOINT_INFERENCE", str(func(c *Config) *string { return &c.EndpointName })},
	{"SAGEMAKER_ENDPOINT_CONFIG_INFERENCE", str(func(c *Config) *string { return &c.EndpointConfigName })},
	{"SAGEMAKER_INFERENCE_COMPONENT", str(func(c *Config) *string { return &c.InferenceComponentName })},
	{"DEPLOY_TIMESTAMP", str(func(c *Config) *string { return &c.DeployTimestamp })},
	{"AWS_ARN_ROLE", str(func(c *Config) *string { return &c.RoleARN })},
	{"GPU_INSTANCE_TYPE", str(func(c *Config) *string { return &c.InstanceType })},
	{"COPIES", integer(func(c *Config) *int { return &c.Copies })},
	{"GPUS", integer(func(c *Config) *int { return &c.GPUs })},
	{"CPUS", integer(func(c *Config) *int { return &c.CPUs })},
	{"MEMORY_MB", integer(func(c *Config) *int { return &c.MemoryMB })},
	{"HF_MODEL_ID", str(func(c *Config) *string { return &c.HFModelID })},
	{"HUGGINGFACE_ACCESS_TOKEN", str(func(c *Config) *string { return &c.HFToken })},
	{"SM_NUM_GPUS", integer(func(c *Config) *int { return &c.NumGPUs })},
	{"MAX_INPUT_LENGTH", integer(func(c *Config) *int { return &c.MaxInputLength })},
	{"MAX_TOTAL_TOKENS", integer(func(c *Config) *int { return &c.MaxTotalTokens })},
	{"MAX_BATCH_TOTAL_TOKENS", integer(func(c *Config) *int { return &c.MaxBatchTotalTokens })},
	{"LLM_IMAGE_URI", str(func(c *Config) *string { return &c.ImageURI })},
	{"TGI_VERSION", str(func(c *Config) *string { return &c.TGIVersion })},
	{"MAX_NEW_TOKENS_INFERENCE", integer(func(c *Config) *int { return &c.MaxNewTokens })},
	{"TOP_P_INFERENCE", float(func(c *Config) **float64 { return &c.TopP })},
	{"TEMPERATURE_INFERENCE", float(func(c *Config) **float64 { return &c.Temperature })},
	{"INFERENCE_URL", str(func(c *Config) *string { return &c.InferenceURL })},
	{"ENDPOINTD_CONTROL_PLANE", str(func(c *Config) *string { return &c.ControlPlane })},
	{"ENDPOINTD_DELETE_WAIT_SECONDS", integer(func(c *Config) *int { return &c.DeleteWaitSeconds })},
	{"ENDPOINTD_IN_SERVICE_WAIT_SECONDS", integer(func(c *Config) *int { return &c.InServiceWaitSeconds })},
	{"ENDPOINTD_ADDR", str(func(c *Config) *string { return &c.Addr })},
	{"ENDPOINTD_LOG_LEVEL", str(func(c *Config) *string { return &c.LogLevel })},
	{"ENDPOINTD_CORS_ORIGINS", func(c *Config, v string) error {
		c.CORSOrigins = splitCSV(v)
		return nil
	}},
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.EndpointConfigName == "" && c.EndpointName != "" {
		c.EndpointConfigName = c.EndpointName + "-config"
	}
	if c.Copies == 0 {
		c.Copies = DefaultCopies
	}
	if c.GPUs == 0 {
		c.GPUs = DefaultGPUs
	}
	if c.CPUs == 0 {
		c.CPUs = DefaultCPUs
	}
	if c.MemoryMB == 0 {
		c.MemoryMB = DefaultMemoryMB
	}
	if c.NumGPUs == 0 {
		c.NumGPUs = c.GPUs
	}
	if c.Quantize == "" {
		c.Quantize = DefaultQuantize
	}
	if c.TGIVersion == "" {
		c.TGIVersion = DefaultTGIVersion
	}
	if c.MaxNewTokens == 0 {
		c.MaxNewTokens = DefaultMaxNewTokens
	}
	if c.TopP == nil {
		c.TopP = Float(DefaultTopP)
	}
	if c.Temperature == nil {
		c.Temperature = Float(DefaultTemperature)
	}
	if c.ControlPlane == "" {
		c.ControlPlane = ControlPlaneSageMaker
	}
	if c.DeleteWaitSeconds == 0 {
		c.DeleteWaitSeconds = DefaultDeleteWaitSeconds
	}
	if c.InServiceWaitSeconds == 0 {
		c.InServiceWaitSeconds = DefaultInServiceWaitSeconds
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks required fields and numeric ranges. The role ARN is not
// checked here; only deployment needs it.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.EndpointName) == "" {
		errs = append(errs, errors.New("endpoint name is required (SAGEMAKER_ENDPOINT_INFERENCE)"))
	}
	switch c.ControlPlane {
	case ControlPlaneSageMaker:
		if c.Region == "" {
			errs = append(errs, errors.New("region is required for the sagemaker control plane (AWS_REGION)"))
		}
	case ControlPlaneMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported control plane %q", c.ControlPlane))
	}
	if c.Copies < 1 {
		errs = append(errs, fmt.Errorf("copies must be >= 1, got %d", c.Copies))
	}
	if c.GPUs < 0 || c.CPUs < 0 || c.NumGPUs < 0 {
		errs = append(errs, errors.New("gpu/cpu counts must not be negative"))
	}
	if c.MemoryMB <= 0 {
		errs = append(errs, fmt.Errorf("memory_mb must be > 0, got %d", c.MemoryMB))
	}
	if c.MaxNewTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_new_tokens must be > 0, got %d", c.MaxNewTokens))
	}
	if p := c.SamplingTopP(); p <= 0 || p > 1 {
		errs = append(errs, fmt.Errorf("top_p must be in (0,1], got %v", p))
	}
	if t := c.SamplingTemperature(); t < 0 {
		errs = append(errs, fmt.Errorf("temperature must be >= 0, got %v", t))
	}
	if c.DeleteWaitSeconds < 0 || c.InServiceWaitSeconds < 0 {
		errs = append(errs, errors.New("wait timeouts must not be negative"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unsupported log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Float returns a pointer to v, for the optional sampling fields.
func Float(v float64) *float64 { return &v }

// SamplingTopP returns top_p, or the default when unset.
func (c Config) SamplingTopP() float64 {
	if c.TopP == nil {
		return DefaultTopP
	}
	return *c.TopP
}

// SamplingTemperature returns the temperature, or the default when unset.
func (c Config) SamplingTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// ComponentNone disables inference component routing for invocations.
const ComponentNone = "None"

// ResolvedInferenceComponentName is the component name shared by deploy and
// invoke: the configured name, or the endpoint name when unset. ComponentNone
// resolves to "", which sends invocations to the endpoint itself.
func (c Config) ResolvedInferenceComponentName() string {
	switch n := strings.TrimSpace(c.InferenceComponentName); n {
	case "":
		return c.EndpointName
	case ComponentNone:
		return ""
	default:
		return n
	}
}
