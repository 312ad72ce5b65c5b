package inference

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"endpointd/internal/config"
)

// DefaultPrompt embeds the query and context verbatim.
const DefaultPrompt = "You are a content creator. Write what the user asked you to while using the provided context " +
	"as the primary source of information for the content.\n" +
	" User query: {{.Query}}\n" +
	" Context: {{.Context}}"

// RepetitionPenalty is sent with every execution.
const RepetitionPenalty = 1.1

// PromptData is the value a prompt template is executed with.
type PromptData struct {
	Query   string
	Context string
}

// Executor renders a prompt, drives a Client and extracts the answer.
type Executor struct {
	MaxNewTokens int
	Temperature  float64
	tmpl         *template.Template
	log          zerolog.Logger
}

// NewExecutor parses prompt; empty selects DefaultPrompt.
func NewExecutor(maxNewTokens int, temperature float64, prompt string) (*Executor, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	t, err := parsePrompt(prompt)
	if err != nil {
		return nil, err
	}
	return &Executor{MaxNewTokens: maxNewTokens, Temperature: temperature, tmpl: t, log: log.Logger}, nil
}

// NewExecutorFromConfig uses the configured generation limits and the
// default prompt.
func NewExecutorFromConfig(cfg config.Config) *Executor {
	e, err := NewExecutor(cfg.MaxNewTokens, cfg.SamplingTemperature(), "")
	if err != nil {
		// DefaultPrompt is a constant and always parses.
		panic(err)
	}
	return e
}

func parsePrompt(prompt string) (*template.Template, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(prompt)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return t, nil
}

// Render executes the prompt template.
func (e *Executor) Render(query, ctxText string) (string, error) {
	return render(e.tmpl, query, ctxText)
}

func render(t *template.Template, query, ctxText string) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, PromptData{Query: query, Context: ctxText}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// Execute sends one generation request through c and returns the generated
// text. Transport failures come back as *TransportError and malformed
// answers as *ExtractionError; neither is turned into an empty answer.
func (e *Executor) Execute(ctx context.Context, c Client, query, ctxText string) (string, error) {
	return e.run(ctx, c, e.tmpl, query, ctxText)
}

// ExecuteWithTemplate is Execute with a prompt template for this call only.
// An empty prompt uses the executor's template.
func (e *Executor) ExecuteWithTemplate(ctx context.Context, c Client, query, ctxText, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return e.Execute(ctx, c, query, ctxText)
	}
	t, err := parsePrompt(prompt)
	if err != nil {
		return "", err
	}
	return e.run(ctx, c, t, query, ctxText)
}

func (e *Executor) run(ctx context.Context, c Client, t *template.Template, query, ctxText string) (answer string, err error) {
	prompt, err := render(t, query, ctxText)
	if err != nil {
		return "", err
	}
	c.SetPayload(prompt, map[string]any{
		"max_new_tokens":     e.MaxNewTokens,
		"repetition_penalty": RepetitionPenalty,
		"temperature":        e.Temperature,
	})

	start := time.Now()
	defer func() { observe(c.Endpoint(), start, err) }()

	res, err := c.Invoke(ctx)
	if err != nil {
		return "", err
	}
	answer, err = extract(res)
	if err != nil {
		e.log.Error().Err(err).Str("endpoint", c.Endpoint()).Msg("inference response has no answer")
		return "", err
	}
	return answer, nil
}

func extract(res Result) (string, error) {
	if len(res) == 0 {
		return "", &ExtractionError{Reason: "empty result"}
	}
	v, ok := res[0]["generated_text"]
	if !ok {
		return "", &ExtractionError{Reason: "generated_text missing from first result"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ExtractionError{Reason: fmt.Sprintf("generated_text is %T, not a string", v)}
	}
	return s, nil
}
