package inference

import (
	"maps"

	"endpointd/internal/config"
)

// DefaultInputs is the placeholder prompt of a fresh payload.
const DefaultInputs = "How is the weather?"

// Payload is the request body understood by text-generation-inference.
type Payload struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

// DefaultPayload builds the payload every client starts from.
func DefaultPayload(maxNewTokens int, topP, temperature float64) Payload {
	return Payload{
		Inputs: DefaultInputs,
		Parameters: map[string]any{
			"max_new_tokens":   maxNewTokens,
			"top_p":            topP,
			"temperature":      temperature,
			"return_full_text": false,
		},
	}
}

// PayloadFromConfig is DefaultPayload with the configured sampling values.
func PayloadFromConfig(cfg config.Config) Payload {
	return DefaultPayload(cfg.MaxNewTokens, cfg.SamplingTopP(), cfg.SamplingTemperature())
}

// Set replaces the input text and merges overrides into the parameters.
// Keys absent from overrides keep their previous values.
func (p *Payload) Set(inputs string, overrides map[string]any) {
	p.Inputs = inputs
	if p.Parameters == nil {
		p.Parameters = make(map[string]any, len(overrides))
	}
	maps.Copy(p.Parameters, overrides)
}

// Clone returns a deep copy of the parameter map.
func (p Payload) Clone() Payload {
	return Payload{Inputs: p.Inputs, Parameters: maps.Clone(p.Parameters)}
}
