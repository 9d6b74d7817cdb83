// Package engine provides dispatcher implementations for handing deployment
// tasks to the orchestration engine. The engine itself runs off-process; the
// core only ever sees the Dispatcher contract plus the asynchronous result
// and notification callbacks.
package engine

import (
	"context"
	"sync"

	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
)

// NewNoOp returns a dispatcher that accepts and drops every task. Useful
// when the core runs without an engine attached.
func NewNoOp() interfaces.Dispatcher {
	return noOpDispatcher{}
}

type noOpDispatcher struct{}

func (noOpDispatcher) HandleTask(context.Context, interfaces.Task) error {
	return nil
}

// NewRecording returns a dispatcher that records every accepted task.
// Deterministic stand-in for the engine transport in tests and local runs.
func NewRecording() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

// RecordingDispatcher stores dispatched tasks in order of acceptance. A
// non-nil Err makes every dispatch fail, which tests use to drive the
// rollback path of the submitter.
type RecordingDispatcher struct {
	mu    sync.Mutex
	tasks []interfaces.Task

	Err error
}

func (d *RecordingDispatcher) HandleTask(_ context.Context, task interfaces.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

// Tasks returns a snapshot of the dispatched tasks.
func (d *RecordingDispatcher) Tasks() []interfaces.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]interfaces.Task, len(d.tasks))
	copy(out, d.tasks)
	return out
}

// NewLogging wraps a dispatcher so every accepted task is logged with its
// sanitized payload.
func NewLogging(next interfaces.Dispatcher, provider interfaces.LoggerProvider) interfaces.Dispatcher {
	return &loggingDispatcher{
		next:   next,
		logger: logging.EngineLogger(provider),
	}
}

type loggingDispatcher struct {
	next   interfaces.Dispatcher
	logger interfaces.Logger
}

func (d *loggingDispatcher) HandleTask(ctx context.Context, task interfaces.Task) error {
	if err := d.next.HandleTask(ctx, task); err != nil {
		d.logger.Error("engine.dispatch.failed", "task_id", task.ID, "error", err)
		return err
	}
	d.logger.Debug("engine.dispatch.accepted", "task_id", task.ID)
	return nil
}
