package interfaces

import "context"

// Event is a domain notification emitted by the core, e.g.
// environment.deploy.end after a successful deployment.
type Event struct {
	Type    string
	Payload map[string]any
}

// EventSink receives emitted events; implementations forward them to
// whatever notification transport the host application wires in.
type EventSink interface {
	Emit(ctx context.Context, event Event) error
}
