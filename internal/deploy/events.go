package deploy

import "github.com/rs/zerolog"

// Lifecycle event names.
const (
	EventDeployStart  = "deploy_start"
	EventTeardownDone = "teardown_done"
	EventDeployDone   = "deploy_done"
	EventDeployFailed = "deploy_failed"
)

// Event represents a deployment lifecycle event.
// Minimal and stable: name + endpoint and optional fields via key/values.
type Event struct {
	Name     string
	Endpoint string
	Fields   map[string]any
}

// EventPublisher receives events from the Service. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// LogPublisher writes each event as a debug log line.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Logger.Debug().Str("event", e.Name).Str("endpoint", e.Endpoint)
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("deploy event")
}
