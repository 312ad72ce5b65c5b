// Package sagemaker implements controlplane.ControlPlane on top of the
// Amazon SageMaker API.
//
// Model-based endpoints bind the model to the production variant directly.
// Inference-component-based endpoints are created in three remote steps:
// a configuration carrying only the instance shape, the endpoint, and once
// the endpoint is in service an inference component holding the model and
// its compute requirements. Deleting an endpoint removes its inference
// components first and then waits until the endpoint is gone, so that a
// follow-up create with the same name is accepted.
package sagemaker

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sm "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"k8s.io/apimachinery/pkg/util/wait"

	"endpointd/internal/config"
	"endpointd/internal/controlplane"
)

const (
	defaultVariantName  = "AllTraffic"
	defaultPollInterval = 15 * time.Second
	// startupHealthCheckTimeout gives large models time to download and load.
	startupHealthCheckTimeout = 900
)

// API is the subset of the SageMaker client used by Backend.
type API interface {
	DescribeEndpoint(ctx context.Context, in *sm.DescribeEndpointInput, optFns ...func(*sm.Options)) (*sm.DescribeEndpointOutput, error)
	DeleteEndpoint(ctx context.Context, in *sm.DeleteEndpointInput, optFns ...func(*sm.Options)) (*sm.DeleteEndpointOutput, error)
	CreateEndpoint(ctx context.Context, in *sm.CreateEndpointInput, optFns ...func(*sm.Options)) (*sm.CreateEndpointOutput, error)

	DescribeEndpointConfig(ctx context.Context, in *sm.DescribeEndpointConfigInput, optFns ...func(*sm.Options)) (*sm.DescribeEndpointConfigOutput, error)
	DeleteEndpointConfig(ctx context.Context, in *sm.DeleteEndpointConfigInput, optFns ...func(*sm.Options)) (*sm.DeleteEndpointConfigOutput, error)
	CreateEndpointConfig(ctx context.Context, in *sm.CreateEndpointConfigInput, optFns ...func(*sm.Options)) (*sm.CreateEndpointConfigOutput, error)

	DescribeModel(ctx context.Context, in *sm.DescribeModelInput, optFns ...func(*sm.Options)) (*sm.DescribeModelOutput, error)
	DeleteModel(ctx context.Context, in *sm.DeleteModelInput, optFns ...func(*sm.Options)) (*sm.DeleteModelOutput, error)
	CreateModel(ctx context.Context, in *sm.CreateModelInput, optFns ...func(*sm.Options)) (*sm.CreateModelOutput, error)

	CreateInferenceComponent(ctx context.Context, in *sm.CreateInferenceComponentInput, optFns ...func(*sm.Options)) (*sm.CreateInferenceComponentOutput, error)
	DescribeInferenceComponent(ctx context.Context, in *sm.DescribeInferenceComponentInput, optFns ...func(*sm.Options)) (*sm.DescribeInferenceComponentOutput, error)
	DeleteInferenceComponent(ctx context.Context, in *sm.DeleteInferenceComponentInput, optFns ...func(*sm.Options)) (*sm.DeleteInferenceComponentOutput, error)
	ListInferenceComponents(ctx context.Context, in *sm.ListInferenceComponentsInput, optFns ...func(*sm.Options)) (*sm.ListInferenceComponentsOutput, error)
}

// Backend talks to SageMaker. It holds no state besides the client.
type Backend struct {
	api            API
	variantName    string
	pollInterval   time.Duration
	deleteTimeout  time.Duration
	serviceTimeout time.Duration
	log            zerolog.Logger
}

// Option customizes a Backend.
type Option func(*Backend)

// WithPollInterval sets how often remote status is polled while waiting.
func WithPollInterval(d time.Duration) Option { return func(b *Backend) { b.pollInterval = d } }

// WithDeleteTimeout bounds the wait for an endpoint deletion to finish.
// Zero disables waiting.
func WithDeleteTimeout(d time.Duration) Option { return func(b *Backend) { b.deleteTimeout = d } }

// WithInServiceTimeout bounds the wait for an endpoint to become InService
// before an inference component can be attached.
func WithInServiceTimeout(d time.Duration) Option {
	return func(b *Backend) { b.serviceTimeout = d }
}

// WithLogger overrides the global logger.
func WithLogger(l zerolog.Logger) Option { return func(b *Backend) { b.log = l } }

// New wraps an API client.
func New(api API, opts ...Option) *Backend {
	b := &Backend{
		api:            api,
		variantName:    defaultVariantName,
		pollInterval:   defaultPollInterval,
		deleteTimeout:  time.Duration(config.DefaultDeleteWaitSeconds) * time.Second,
		serviceTimeout: time.Duration(config.DefaultInServiceWaitSeconds) * time.Second,
		log:            log.Logger,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewFromConfig builds a Backend with a real SageMaker client.
func NewFromConfig(ctx context.Context, cfg config.Config, opts ...Option) (*Backend, error) {
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	base := []Option{
		WithDeleteTimeout(time.Duration(cfg.DeleteWaitSeconds) * time.Second),
		WithInServiceTimeout(time.Duration(cfg.InServiceWaitSeconds) * time.Second),
	}
	return New(sm.NewFromConfig(awsCfg), append(base, opts...)...), nil
}

var _ controlplane.ControlPlane = (*Backend)(nil)

func (b *Backend) DescribeEndpoint(ctx context.Context, name string) (controlplane.EndpointDescription, error) {
	out, err := b.api.DescribeEndpoint(ctx, &sm.DescribeEndpointInput{EndpointName: aws.String(name)})
	if err != nil {
		return controlplane.EndpointDescription{}, classify(controlplane.KindEndpoint, name, err)
	}
	return controlplane.EndpointDescription{
		Name:       aws.ToString(out.EndpointName),
		ConfigName: aws.ToString(out.EndpointConfigName),
		Status:     string(out.EndpointStatus),
	}, nil
}

func (b *Backend) DeleteEndpoint(ctx context.Context, name string) error {
	if err := b.deleteInferenceComponents(ctx, name); err != nil {
		return err
	}
	if _, err := b.api.DeleteEndpoint(ctx, &sm.DeleteEndpointInput{EndpointName: aws.String(name)}); err != nil {
		return classify(controlplane.KindEndpoint, name, err)
	}
	if b.deleteTimeout <= 0 {
		return nil
	}
	b.log.Debug().Str("endpoint", name).Dur("timeout", b.deleteTimeout).Msg("waiting for endpoint deletion")
	err := wait.PollUntilContextTimeout(ctx, b.pollInterval, b.deleteTimeout, true, func(ctx context.Context) (bool, error) {
		_, err := b.DescribeEndpoint(ctx, name)
		if controlplane.IsNotFound(err) {
			return true, nil
		}
		return false, err
	})
	if err != nil {
		return fmt.Errorf("wait for endpoint %q deletion: %w", name, err)
	}
	return nil
}

func (b *Backend) CreateEndpoint(ctx context.Context, spec controlplane.EndpointSpec) error {
	_, err := b.api.CreateEndpoint(ctx, &sm.CreateEndpointInput{
		EndpointName:       aws.String(spec.Name),
		EndpointConfigName: aws.String(spec.ConfigName),
	})
	if err != nil {
		return classify(controlplane.KindEndpoint, spec.Name, err)
	}
	if spec.Type != controlplane.EndpointTypeInferenceComponentBased {
		return nil
	}
	if err := b.waitInService(ctx, spec.Name); err != nil {
		return err
	}
	icName := spec.InferenceComponentName
	if icName == "" {
		icName = spec.Name
	}
	r := spec.Resources
	_, err = b.api.CreateInferenceComponent(ctx, &sm.CreateInferenceComponentInput{
		InferenceComponentName: aws.String(icName),
		EndpointName:           aws.String(spec.Name),
		VariantName:            aws.String(b.variantName),
		Specification: &types.InferenceComponentSpecification{
			ModelName: aws.String(spec.ModelName),
			ComputeResourceRequirements: &types.InferenceComponentComputeResourceRequirements{
				MinMemoryRequiredInMb:              aws.Int32(int32(r.MemoryMB)),
				NumberOfAcceleratorDevicesRequired: aws.Float32(float32(r.Accelerators)),
				NumberOfCpuCoresRequired:           aws.Float32(float32(r.CPUs)),
			},
		},
		RuntimeConfig: &types.InferenceComponentRuntimeConfig{CopyCount: aws.Int32(int32(r.Copies))},
	})
	if err != nil {
		return classify(controlplane.KindInferenceComponent, icName, err)
	}
	return nil
}

func (b *Backend) waitInService(ctx context.Context, name string) error {
	b.log.Info().Str("endpoint", name).Msg("waiting for endpoint to be in service")
	err := wait.PollUntilContextTimeout(ctx, b.pollInterval, b.serviceTimeout, true, func(ctx context.Context) (bool, error) {
		out, err := b.api.DescribeEndpoint(ctx, &sm.DescribeEndpointInput{EndpointName: aws.String(name)})
		if err != nil {
			return false, classify(controlplane.KindEndpoint, name, err)
		}
		switch out.EndpointStatus {
		case types.EndpointStatusInService:
			return true, nil
		case types.EndpointStatusFailed:
			return false, fmt.Errorf("endpoint %q failed: %s", name, aws.ToString(out.FailureReason))
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("wait for endpoint %q in service: %w", name, err)
	}
	return nil
}

// deleteInferenceComponents removes every component attached to endpoint
// and waits for each to disappear. A missing endpoint has none.
func (b *Backend) deleteInferenceComponents(ctx context.Context, endpoint string) error {
	var names []string
	var next *string
	for {
		out, err := b.api.ListInferenceComponents(ctx, &sm.ListInferenceComponentsInput{
			EndpointNameEquals: aws.String(endpoint),
			NextToken:          next,
		})
		if err != nil {
			return classify(controlplane.KindInferenceComponent, endpoint, err)
		}
		for _, ic := range out.InferenceComponents {
			names = append(names, aws.ToString(ic.InferenceComponentName))
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		next = out.NextToken
	}
	for _, name := range names {
		b.log.Info().Str("endpoint", endpoint).Str("inference_component", name).Msg("deleting inference component")
		_, err := b.api.DeleteInferenceComponent(ctx, &sm.DeleteInferenceComponentInput{InferenceComponentName: aws.String(name)})
		if err != nil && !isNotFound(err) {
			return classify(controlplane.KindInferenceComponent, name, err)
		}
	}
	if b.deleteTimeout <= 0 {
		return nil
	}
	for _, name := range names {
		err := wait.PollUntilContextTimeout(ctx, b.pollInterval, b.deleteTimeout, true, func(ctx context.Context) (bool, error) {
			_, err := b.api.DescribeInferenceComponent(ctx, &sm.DescribeInferenceComponentInput{InferenceComponentName: aws.String(name)})
			if err == nil {
				return false, nil
			}
			if isNotFound(err) {
				return true, nil
			}
			return false, err
		})
		if err != nil {
			return fmt.Errorf("wait for inference component %q deletion: %w", name, err)
		}
	}
	return nil
}

func (b *Backend) DescribeEndpointConfig(ctx context.Context, name string) (controlplane.EndpointConfigDescription, error) {
	out, err := b.api.DescribeEndpointConfig(ctx, &sm.DescribeEndpointConfigInput{EndpointConfigName: aws.String(name)})
	if err != nil {
		return controlplane.EndpointConfigDescription{}, classify(controlplane.KindEndpointConfig, name, err)
	}
	d := controlplane.EndpointConfigDescription{Name: aws.ToString(out.EndpointConfigName)}
	for _, v := range out.ProductionVariants {
		if m := aws.ToString(v.ModelName); m != "" {
			d.ModelNames = append(d.ModelNames, m)
		}
	}
	return d, nil
}

func (b *Backend) DeleteEndpointConfig(ctx context.Context, name string) error {
	_, err := b.api.DeleteEndpointConfig(ctx, &sm.DeleteEndpointConfigInput{EndpointConfigName: aws.String(name)})
	if err != nil {
		return classify(controlplane.KindEndpointConfig, name, err)
	}
	return nil
}

func (b *Backend) CreateEndpointConfig(ctx context.Context, spec controlplane.EndpointConfigSpec) error {
	_, err := b.api.CreateEndpointConfig(ctx, endpointConfigInput(spec, b.variantName))
	if err != nil {
		return classify(controlplane.KindEndpointConfig, spec.Name, err)
	}
	return nil
}

func endpointConfigInput(spec controlplane.EndpointConfigSpec, variant string) *sm.CreateEndpointConfigInput {
	count := spec.InstanceCount
	if count <= 0 {
		count = 1
	}
	pv := types.ProductionVariant{
		VariantName:          aws.String(variant),
		InstanceType:         types.ProductionVariantInstanceType(spec.InstanceType),
		InitialInstanceCount: aws.Int32(int32(count)),
	}
	pv.ContainerStartupHealthCheckTimeoutInSeconds = aws.Int32(startupHealthCheckTimeout)
	in := &sm.CreateEndpointConfigInput{EndpointConfigName: aws.String(spec.Name)}
	if spec.Type == controlplane.EndpointTypeInferenceComponentBased {
		// The model is attached later as an inference component; the
		// configuration needs the role to pull it.
		in.ExecutionRoleArn = aws.String(spec.RoleARN)
	} else {
		pv.ModelName = aws.String(spec.ModelName)
		pv.InitialVariantWeight = aws.Float32(1)
	}
	in.ProductionVariants = []types.ProductionVariant{pv}
	return in
}

func (b *Backend) DescribeModel(ctx context.Context, name string) (controlplane.ModelDescription, error) {
	out, err := b.api.DescribeModel(ctx, &sm.DescribeModelInput{ModelName: aws.String(name)})
	if err != nil {
		return controlplane.ModelDescription{}, classify(controlplane.KindModel, name, err)
	}
	d := controlplane.ModelDescription{Name: aws.ToString(out.ModelName)}
	if out.PrimaryContainer != nil {
		d.Image = aws.ToString(out.PrimaryContainer.Image)
	}
	return d, nil
}

func (b *Backend) DeleteModel(ctx context.Context, name string) error {
	if _, err := b.api.DeleteModel(ctx, &sm.DeleteModelInput{ModelName: aws.String(name)}); err != nil {
		return classify(controlplane.KindModel, name, err)
	}
	return nil
}

func (b *Backend) CreateModel(ctx context.Context, spec controlplane.ModelSpec) error {
	_, err := b.api.CreateModel(ctx, &sm.CreateModelInput{
		ModelName:        aws.String(spec.Name),
		ExecutionRoleArn: aws.String(spec.RoleARN),
		PrimaryContainer: &types.ContainerDefinition{
			Image:       aws.String(spec.Image),
			Environment: spec.Environment,
		},
	})
	if err != nil {
		return classify(controlplane.KindModel, spec.Name, err)
	}
	return nil
}

