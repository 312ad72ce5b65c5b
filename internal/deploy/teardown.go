package deploy

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"endpointd/internal/controlplane"
)

// Outcome of visiting one resource during teardown.
type Outcome string

const (
	OutcomeRemoved Outcome = "removed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ResourceOutcome records what teardown did to one resource. Err is set for
// failures only.
type ResourceOutcome struct {
	Kind controlplane.ResourceKind
	Name string
	Err  error
}

// TeardownReport is the aggregate result of DeleteExisting.
type TeardownReport struct {
	Removed []ResourceOutcome
	Skipped []ResourceOutcome
	Failed  []ResourceOutcome
}

// Clean reports whether no resource failed to be removed.
func (r TeardownReport) Clean() bool { return len(r.Failed) == 0 }

func (r *TeardownReport) add(o Outcome, ro ResourceOutcome) {
	switch o {
	case OutcomeRemoved:
		r.Removed = append(r.Removed, ro)
	case OutcomeSkipped:
		r.Skipped = append(r.Skipped, ro)
	case OutcomeFailed:
		r.Failed = append(r.Failed, ro)
	}
	teardownResourcesTotal.WithLabelValues(string(ro.Kind), string(o)).Inc()
}

// Teardown deletes an endpoint, its configuration and its models in that
// order. Every failure is logged and recorded; none is returned.
type Teardown struct {
	cp  controlplane.ControlPlane
	rm  *ResourceManager
	log zerolog.Logger
}

// NewTeardown builds a Teardown. A nil logger selects the global one.
func NewTeardown(cp controlplane.ControlPlane, logger *zerolog.Logger) *Teardown {
	t := &Teardown{cp: cp, rm: NewResourceManager(cp), log: log.Logger}
	if logger != nil {
		t.log = *logger
	}
	return t
}

// DeleteExisting removes whatever subset of the named resources exists.
// Model names attached to the configuration are resolved before the
// configuration is deleted and are removed along with modelName. Empty names
// are skipped without a remote call.
func (t *Teardown) DeleteExisting(ctx context.Context, endpointName, endpointConfigName, modelName string) TeardownReport {
	var rep TeardownReport

	t.visit(ctx, &rep, controlplane.KindEndpoint, endpointName, t.rm.EndpointExists, t.cp.DeleteEndpoint)

	models := []string{modelName}
	if endpointConfigName != "" {
		d, err := t.cp.DescribeEndpointConfig(ctx, endpointConfigName)
		switch {
		case err == nil:
			models = append(models, d.ModelNames...)
			t.remove(ctx, &rep, controlplane.KindEndpointConfig, endpointConfigName, t.cp.DeleteEndpointConfig)
		case controlplane.IsNotFound(err):
			t.record(&rep, OutcomeSkipped, controlplane.KindEndpointConfig, endpointConfigName, nil)
		default:
			t.record(&rep, OutcomeFailed, controlplane.KindEndpointConfig, endpointConfigName, err)
		}
	}

	for _, m := range dedupe(models) {
		t.visit(ctx, &rep, controlplane.KindModel, m, t.rm.ModelExists, t.cp.DeleteModel)
	}

	t.log.Info().
		Str("endpoint", endpointName).
		Int("removed", len(rep.Removed)).
		Int("skipped", len(rep.Skipped)).
		Int("failed", len(rep.Failed)).
		Msg("teardown finished")
	return rep
}

// visit describes the resource and deletes it when present.
func (t *Teardown) visit(ctx context.Context, rep *TeardownReport, kind controlplane.ResourceKind, name string,
	existsFn func(context.Context, string) (bool, error), deleteFn func(context.Context, string) error) {
	if name == "" {
		return
	}
	ok, err := existsFn(ctx, name)
	if err != nil {
		t.record(rep, OutcomeFailed, kind, name, err)
		return
	}
	if !ok {
		t.record(rep, OutcomeSkipped, kind, name, nil)
		return
	}
	t.remove(ctx, rep, kind, name, deleteFn)
}

func (t *Teardown) remove(ctx context.Context, rep *TeardownReport, kind controlplane.ResourceKind, name string, deleteFn func(context.Context, string) error) {
	err := deleteFn(ctx, name)
	switch {
	case err == nil:
		t.record(rep, OutcomeRemoved, kind, name, nil)
	case controlplane.IsNotFound(err):
		// Gone between describe and delete.
		t.record(rep, OutcomeSkipped, kind, name, nil)
	default:
		t.record(rep, OutcomeFailed, kind, name, err)
	}
}

func (t *Teardown) record(rep *TeardownReport, o Outcome, kind controlplane.ResourceKind, name string, err error) {
	rep.add(o, ResourceOutcome{Kind: kind, Name: name, Err: err})
	switch o {
	case OutcomeFailed:
		t.log.Warn().Err(err).Str("kind", string(kind)).Str("name", name).Msg("teardown: could not remove resource, continuing")
	case OutcomeRemoved:
		t.log.Info().Str("kind", string(kind)).Str("name", name).Msg("teardown: deleted")
	default:
		t.log.Debug().Str("kind", string(kind)).Str("name", name).Msg("teardown: not present")
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
