package controlplane

import (
	"context"
	"fmt"
	"sync"
)

// Operation names recorded by Memory.
const (
	OpDescribeEndpoint       = "DescribeEndpoint"
	OpDeleteEndpoint         = "DeleteEndpoint"
	OpCreateEndpoint         = "CreateEndpoint"
	OpDescribeEndpointConfig = "DescribeEndpointConfig"
	OpDeleteEndpointConfig   = "DeleteEndpointConfig"
	OpCreateEndpointConfig   = "CreateEndpointConfig"
	OpDescribeModel          = "DescribeModel"
	OpDeleteModel            = "DeleteModel"
	OpCreateModel            = "CreateModel"
)

// Call is one recorded control plane request.
type Call struct {
	Op   string
	Name string
}

// Memory is a synchronous in-memory ControlPlane. It records every call and
// enforces the same referential rules as the remote service: names are
// unique per kind, a configuration needs its model, an endpoint needs its
// configuration. Used by tests and by dry runs.
type Memory struct {
	mu        sync.Mutex
	endpoints map[string]EndpointSpec
	configs   map[string]EndpointConfigSpec
	models    map[string]ModelSpec
	calls     []Call
	faults    map[Call]error
}

func NewMemory() *Memory {
	return &Memory{
		endpoints: make(map[string]EndpointSpec),
		configs:   make(map[string]EndpointConfigSpec),
		models:    make(map[string]ModelSpec),
		faults:    make(map[Call]error),
	}
}

// Fail makes op on name return err until cleared with a nil err.
// An empty name matches every resource.
func (m *Memory) Fail(op, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := Call{Op: op, Name: name}
	if err == nil {
		delete(m.faults, k)
		return
	}
	m.faults[k] = err
}

// Calls returns a copy of the recorded calls in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOf returns the recorded calls whose operation is one of ops.
func (m *Memory) CallsOf(ops ...string) []Call {
	want := make(map[string]bool, len(ops))
	for _, op := range ops {
		want[op] = true
	}
	var out []Call
	for _, c := range m.Calls() {
		if want[c.Op] {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log; stored resources are kept.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// Has reports whether a resource of kind exists under name.
func (m *Memory) Has(kind ResourceKind, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case KindEndpoint:
		_, ok := m.endpoints[name]
		return ok
	case KindEndpointConfig:
		_, ok := m.configs[name]
		return ok
	case KindModel:
		_, ok := m.models[name]
		return ok
	}
	return false
}

// Model returns the stored model spec, if any.
func (m *Memory) Model(name string) (ModelSpec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.models[name]
	return s, ok
}

// EndpointConfig returns the stored configuration spec, if any.
func (m *Memory) EndpointConfig(name string) (EndpointConfigSpec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.configs[name]
	return s, ok
}

// Endpoint returns the stored endpoint spec, if any.
func (m *Memory) Endpoint(name string) (EndpointSpec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.endpoints[name]
	return s, ok
}

// record logs the call and returns the injected fault for it, if any.
// Caller must hold m.mu.
func (m *Memory) record(ctx context.Context, op, name string) error {
	m.calls = append(m.calls, Call{Op: op, Name: name})
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.faults[Call{Op: op, Name: name}]; ok {
		return err
	}
	if err, ok := m.faults[Call{Op: op}]; ok {
		return err
	}
	return nil
}

func (m *Memory) DescribeEndpoint(ctx context.Context, name string) (EndpointDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpDescribeEndpoint, name); err != nil {
		return EndpointDescription{}, err
	}
	s, ok := m.endpoints[name]
	if !ok {
		return EndpointDescription{}, NotFound(KindEndpoint, name, nil)
	}
	return EndpointDescription{Name: s.Name, ConfigName: s.ConfigName, Status: "InService"}, nil
}

func (m *Memory) DeleteEndpoint(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpDeleteEndpoint, name); err != nil {
		return err
	}
	if _, ok := m.endpoints[name]; !ok {
		return NotFound(KindEndpoint, name, nil)
	}
	delete(m.endpoints, name)
	return nil
}

func (m *Memory) CreateEndpoint(ctx context.Context, spec EndpointSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpCreateEndpoint, spec.Name); err != nil {
		return err
	}
	if _, ok := m.endpoints[spec.Name]; ok {
		return alreadyExistsError{kind: KindEndpoint, name: spec.Name}
	}
	if _, ok := m.configs[spec.ConfigName]; !ok {
		return fmt.Errorf("create endpoint %q: %w", spec.Name, NotFound(KindEndpointConfig, spec.ConfigName, nil))
	}
	if spec.Type == EndpointTypeInferenceComponentBased && spec.ModelName != "" {
		if _, ok := m.models[spec.ModelName]; !ok {
			return fmt.Errorf("create endpoint %q: %w", spec.Name, NotFound(KindModel, spec.ModelName, nil))
		}
	}
	m.endpoints[spec.Name] = spec
	return nil
}

func (m *Memory) DescribeEndpointConfig(ctx context.Context, name string) (EndpointConfigDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpDescribeEndpointConfig, name); err != nil {
		return EndpointConfigDescription{}, err
	}
	s, ok := m.configs[name]
	if !ok {
		return EndpointConfigDescription{}, NotFound(KindEndpointConfig, name, nil)
	}
	d := EndpointConfigDescription{Name: s.Name}
	if s.ModelName != "" {
		d.ModelNames = []string{s.ModelName}
	}
	return d, nil
}

func (m *Memory) DeleteEndpointConfig(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpDeleteEndpointConfig, name); err != nil {
		return err
	}
	if _, ok := m.configs[name]; !ok {
		return NotFound(KindEndpointConfig, name, nil)
	}
	delete(m.configs, name)
	return nil
}

func (m *Memory) CreateEndpointConfig(ctx context.Context, spec EndpointConfigSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpCreateEndpointConfig, spec.Name); err != nil {
		return err
	}
	if _, ok := m.configs[spec.Name]; ok {
		return alreadyExistsError{kind: KindEndpointConfig, name: spec.Name}
	}
	if _, ok := m.models[spec.ModelName]; !ok {
		return fmt.Errorf("create endpoint config %q: %w", spec.Name, NotFound(KindModel, spec.ModelName, nil))
	}
	m.configs[spec.Name] = spec
	return nil
}

func (m *Memory) DescribeModel(ctx context.Context, name string) (ModelDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpDescribeModel, name); err != nil {
		return ModelDescription{}, err
	}
	s, ok := m.models[name]
	if !ok {
		return ModelDescription{}, NotFound(KindModel, name, nil)
	}
	return ModelDescription{Name: s.Name, Image: s.Image}, nil
}

func (m *Memory) DeleteModel(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpDeleteModel, name); err != nil {
		return err
	}
	if _, ok := m.models[name]; !ok {
		return NotFound(KindModel, name, nil)
	}
	delete(m.models, name)
	return nil
}

func (m *Memory) CreateModel(ctx context.Context, spec ModelSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(ctx, OpCreateModel, spec.Name); err != nil {
		return err
	}
	if _, ok := m.models[spec.Name]; ok {
		return alreadyExistsError{kind: KindModel, name: spec.Name}
	}
	env := make(map[string]string, len(spec.Environment))
	for k, v := range spec.Environment {
		env[k] = v
	}
	spec.Environment = env
	m.models[spec.Name] = spec
	return nil
}
