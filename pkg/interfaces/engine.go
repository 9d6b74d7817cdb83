package interfaces

import (
	"context"
	"errors"
)

// ErrDispatcherUnavailable reports that the engine transport rejected or
// could not accept a task. Submission paths treat it as a hard error and
// roll back the pending deployment.
var ErrDispatcherUnavailable = errors.New("engine: dispatcher unavailable")

// Task is the payload handed to the orchestration engine for execution.
// Model is the session document with applications keyed the way the engine
// expects; credentials are sanitized before the payload leaves the core.
type Task struct {
	ID        string         `json:"id"`
	Action    map[string]any `json:"action,omitempty"`
	Model     map[string]any `json:"model"`
	Token     string         `json:"token"`
	ProjectID string         `json:"project_id"`
	UserID    string         `json:"user_id"`
}

// Credentials carries the caller identity a task executes under. The token
// is sanitized out of everything the core persists or logs.
type Credentials struct {
	Token     string
	ProjectID string
	UserID    string
}

// Dispatcher hands tasks to the orchestration engine. HandleTask is
// fire-and-forget: it returns once the task is accepted by the transport,
// never once the deployment completes. Results arrive later through the
// result endpoint.
type Dispatcher interface {
	HandleTask(ctx context.Context, task Task) error
}

// Result is the payload the engine reports back when a task finishes.
type Result struct {
	Model  map[string]any `json:"model"`
	Action map[string]any `json:"action,omitempty"`
}

// Report is one progress-notification line emitted by the engine while a
// deployment runs. ID names the object-model entity the line refers to and
// is stored as the status row's entity id.
type Report struct {
	ID            string `json:"id"`
	EnvironmentID string `json:"environment_id"`
	Level         string `json:"level"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp,omitempty"`
}
