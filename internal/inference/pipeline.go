package inference

import "context"

// Pipeline answers queries with a fresh Client per call, so concurrent
// callers never share payload state.
type Pipeline struct {
	newClient Factory
	exec      *Executor
}

func NewPipeline(f Factory, e *Executor) *Pipeline {
	return &Pipeline{newClient: f, exec: e}
}

// Answer renders, invokes and extracts one generation.
func (p *Pipeline) Answer(ctx context.Context, query, ctxText string) (string, error) {
	return p.exec.Execute(ctx, p.newClient(), query, ctxText)
}

// AnswerWithTemplate is Answer with a prompt template for this call only.
func (p *Pipeline) AnswerWithTemplate(ctx context.Context, query, ctxText, prompt string) (string, error) {
	return p.exec.ExecuteWithTemplate(ctx, p.newClient(), query, ctxText, prompt)
}
