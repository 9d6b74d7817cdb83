package environments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type scriptedStatusSource struct {
	mu       sync.Mutex
	statuses []Status
}

func (s *scriptedStatusSource) GetStatus(_ context.Context, _ uuid.UUID) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return StatusReady, nil
	}
	next := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	return next, nil
}

func TestWaitReadySettles(t *testing.T) {
	source := &scriptedStatusSource{statuses: []Status{
		StatusDeploying,
		StatusDeploying,
		StatusReady,
	}}
	poller := NewStatusPoller(source,
		WithPollInterval(time.Millisecond),
		WithWaitTimeout(time.Second),
	)

	status, err := poller.WaitReady(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	if status != StatusReady {
		t.Fatalf("expected ready, got %s", status)
	}
}

func TestWaitReadyReturnsFailureStates(t *testing.T) {
	source := &scriptedStatusSource{statuses: []Status{
		StatusDeploying,
		StatusDeployFailure,
	}}
	poller := NewStatusPoller(source,
		WithPollInterval(time.Millisecond),
		WithWaitTimeout(time.Second),
	)

	status, err := poller.WaitReady(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	if status != StatusDeployFailure {
		t.Fatalf("expected deploy_failure to end the wait, got %s", status)
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	source := &scriptedStatusSource{statuses: []Status{StatusDeploying}}
	poller := NewStatusPoller(source,
		WithPollInterval(time.Millisecond),
		WithWaitTimeout(10*time.Millisecond),
	)

	_, err := poller.WaitReady(context.Background(), uuid.New())
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
}
