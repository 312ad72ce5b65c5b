package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Result is the decoded endpoint response: a list of generations.
type Result []map[string]any

// Client sets a request payload and invokes a deployed endpoint. A Client is
// single-owner: SetPayload mutates state read by the next Invoke, so one
// instance must not serve concurrent calls.
type Client interface {
	SetPayload(inputs string, overrides map[string]any)
	Payload() Payload
	Invoke(ctx context.Context) (Result, error)
	Endpoint() string
}

// payloadHolder implements the payload half of Client.
type payloadHolder struct {
	payload Payload
}

func (h *payloadHolder) SetPayload(inputs string, overrides map[string]any) {
	h.payload.Set(inputs, overrides)
}

func (h *payloadHolder) Payload() Payload { return h.payload.Clone() }

// decodeResult accepts a list of generations or a single generation object.
func decodeResult(body []byte) (Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	if body[0] == '{' {
		var one map[string]any
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return Result{one}, nil
	}
	var many Result
	if err := json.Unmarshal(body, &many); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return many, nil
}
