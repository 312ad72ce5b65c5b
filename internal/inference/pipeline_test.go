package inference

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_FreshClientPerCall(t *testing.T) {
	var mu sync.Mutex
	var made []*fakeClient
	factory := func() Client {
		c := newFakeClient(Result{{"generated_text": "ok"}}, nil)
		mu.Lock()
		made = append(made, c)
		mu.Unlock()
		return c
	}
	e, err := NewExecutor(150, 0.01, "{{.Query}}")
	require.NoError(t, err)
	p := NewPipeline(factory, e)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := p.Answer(context.Background(), fmt.Sprintf("q%d", i), "")
			assert.NoError(t, err)
			assert.Equal(t, "ok", got)
		}(i)
	}
	wg.Wait()

	require.Len(t, made, 8)
	seen := map[string]bool{}
	for _, c := range made {
		assert.Equal(t, 1, c.invoked)
		seen[c.sent.Inputs] = true
	}
	assert.Len(t, seen, 8, "each client carried its own prompt")
}
