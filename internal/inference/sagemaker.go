package inference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

// RuntimeAPI is the subset of the SageMaker runtime client used here. The
// SDK client is safe for concurrent use and may be shared by many Clients.
type RuntimeAPI interface {
	InvokeEndpoint(ctx context.Context, in *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// SageMakerClient invokes a SageMaker real-time endpoint.
type SageMakerClient struct {
	payloadHolder
	api       RuntimeAPI
	endpoint  string
	component string
	log       zerolog.Logger
}

// NewSageMakerClient builds a client for endpoint. component names the
// inference component to route to; empty or "None" routes to the endpoint.
func NewSageMakerClient(api RuntimeAPI, endpoint, component string, payload Payload) *SageMakerClient {
	return &SageMakerClient{
		payloadHolder: payloadHolder{payload: payload.Clone()},
		api:           api,
		endpoint:      endpoint,
		component:     component,
		log:           log.Logger,
	}
}

func (c *SageMakerClient) Endpoint() string { return c.endpoint }

func (c *SageMakerClient) Invoke(ctx context.Context) (Result, error) {
	body, err := json.Marshal(c.payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	in := &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(c.endpoint),
		ContentType:  aws.String(contentTypeJSON),
		Body:         body,
	}
	if c.component != "" && c.component != "None" {
		in.InferenceComponentName = aws.String(c.component)
	}
	c.log.Debug().Str("endpoint", c.endpoint).Str("inference_component", c.component).Msg("invoking endpoint")
	out, err := c.api.InvokeEndpoint(ctx, in)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", c.endpoint).Msg("inference request failed")
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	res, err := decodeResult(out.Body)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", c.endpoint).Msg("undecodable inference response")
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	return res, nil
}
