package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_HappyPath(t *testing.T) {
	e, err := NewExecutor(150, 0.01, "")
	require.NoError(t, err)
	c := newFakeClient(Result{{"generated_text": "X is short."}}, nil)

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("fake-endpoint", "ok"))
	got, err := e.Execute(context.Background(), c, "Summarize X", "X is ...")
	require.NoError(t, err)
	assert.Equal(t, "X is short.", got)

	want, err := e.Render("Summarize X", "X is ...")
	require.NoError(t, err)
	assert.Equal(t, want, c.sent.Inputs)
	assert.Contains(t, c.sent.Inputs, "User query: Summarize X")
	assert.Contains(t, c.sent.Inputs, "Context: X is ...")
	assert.Equal(t, 0.01, c.sent.Parameters["temperature"])
	assert.Equal(t, 150, c.sent.Parameters["max_new_tokens"])
	assert.Equal(t, RepetitionPenalty, c.sent.Parameters["repetition_penalty"])
	assert.Equal(t, 0.9, c.sent.Parameters["top_p"], "defaults not overridden are kept")
	assert.Equal(t, false, c.sent.Parameters["return_full_text"])
	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("fake-endpoint", "ok")))
}

func TestExecute_TransportErrorPropagates(t *testing.T) {
	e, err := NewExecutor(150, 0.01, "")
	require.NoError(t, err)
	cause := errors.New("connection reset")
	c := newFakeClient(nil, &TransportError{Endpoint: "fake-endpoint", Err: cause})

	got, err := e.Execute(context.Background(), c, "q", "c")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, IsTransport(err))
	assert.False(t, IsExtraction(err))
	assert.ErrorIs(t, err, cause)
}

func TestExecute_ExtractionErrors(t *testing.T) {
	cases := map[string]Result{
		"empty list":    {},
		"missing field": {{"text": "hi"}},
		"not a string":  {{"generated_text": 42.0}},
	}
	e, err := NewExecutor(150, 0.01, "")
	require.NoError(t, err)
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.Execute(context.Background(), newFakeClient(res, nil), "q", "c")
			require.Error(t, err)
			assert.True(t, IsExtraction(err), "got %v", err)
		})
	}
}

func TestExecute_EmptyGeneratedTextIsAnAnswer(t *testing.T) {
	e, err := NewExecutor(150, 0.01, "")
	require.NoError(t, err)
	got, err := e.Execute(context.Background(), newFakeClient(Result{{"generated_text": ""}}, nil), "q", "c")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestExecute_CustomTemplate(t *testing.T) {
	e, err := NewExecutor(10, 0.5, "Q={{.Query}} C={{.Context}}")
	require.NoError(t, err)
	c := newFakeClient(Result{{"generated_text": "ok"}}, nil)
	_, err = e.Execute(context.Background(), c, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "Q=a C=b", c.sent.Inputs)
}

func TestNewExecutor_BadTemplate(t *testing.T) {
	_, err := NewExecutor(10, 0.5, "{{.Query")
	require.Error(t, err)
}

func TestExecuteWithTemplate_PerCall(t *testing.T) {
	e, err := NewExecutor(10, 0.5, "")
	require.NoError(t, err)

	c := newFakeClient(Result{{"generated_text": "ok"}}, nil)
	_, err = e.ExecuteWithTemplate(context.Background(), c, "a", "b", "Q={{.Query}}|C={{.Context}}")
	require.NoError(t, err)
	assert.Equal(t, "Q=a|C=b", c.sent.Inputs)

	// the executor's own template is untouched
	c = newFakeClient(Result{{"generated_text": "ok"}}, nil)
	_, err = e.ExecuteWithTemplate(context.Background(), c, "a", "b", "")
	require.NoError(t, err)
	want, err := e.Render("a", "b")
	require.NoError(t, err)
	assert.Equal(t, want, c.sent.Inputs)
}

func TestExecuteWithTemplate_BadTemplate(t *testing.T) {
	e, err := NewExecutor(10, 0.5, "")
	require.NoError(t, err)
	c := newFakeClient(nil, nil)
	_, err = e.ExecuteWithTemplate(context.Background(), c, "a", "b", "{{.Query")
	require.Error(t, err)
	assert.Zero(t, c.invoked, "client must not be invoked")
}
