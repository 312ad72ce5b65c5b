package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	"endpointd/internal/config"
)

// Factory returns a new single-owner Client on every call.
type Factory func() Client

// defaultHTTPRequestTimeout bounds one generation against an HTTP server.
const defaultHTTPRequestTimeout = 2 * time.Minute

// NewFactory picks the HTTP client when an inference URL is configured and
// the SageMaker runtime client otherwise. Transport resources are shared by
// all clients the factory returns.
func NewFactory(ctx context.Context, cfg config.Config) (Factory, error) {
	payload := PayloadFromConfig(cfg)
	if cfg.InferenceURL != "" {
		doer := NewHTTPDoer(5 * time.Second)
		return func() Client {
			return NewHTTPClient(cfg.InferenceURL, doer, defaultHTTPRequestTimeout, payload)
		}, nil
	}
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	api := sagemakerruntime.NewFromConfig(awsCfg)
	return func() Client {
		return NewSageMakerClient(api, cfg.EndpointName, cfg.ResolvedInferenceComponentName(), payload)
	}, nil
}
