package environments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultWaitTimeout bounds how long WaitReady polls before giving up.
const DefaultWaitTimeout = 1200 * time.Second

const defaultPollInterval = 2 * time.Second

// ErrWaitTimeout reports that the environment did not settle within the
// polling window. The underlying deployment keeps running.
var ErrWaitTimeout = errors.New("environments: timed out waiting for environment to settle")

// StatusSource is the read the poller needs.
type StatusSource interface {
	GetStatus(ctx context.Context, environmentID uuid.UUID) (Status, error)
}

// StatusPoller watches an environment until its deployment settles.
type StatusPoller struct {
	source   StatusSource
	interval time.Duration
	timeout  time.Duration
}

// PollerOption configures a StatusPoller.
type PollerOption func(*StatusPoller)

// WithPollInterval overrides the poll cadence.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithWaitTimeout overrides the total polling window.
func WithWaitTimeout(timeout time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// NewStatusPoller builds a poller over a status source.
func NewStatusPoller(source StatusSource, opts ...PollerOption) *StatusPoller {
	p := &StatusPoller{
		source:   source,
		interval: defaultPollInterval,
		timeout:  DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitReady polls until the environment leaves the deploying and deleting
// states and returns the settled status. Hitting the timeout returns
// ErrWaitTimeout without cancelling the deployment.
func (p *StatusPoller) WaitReady(ctx context.Context, environmentID uuid.UUID) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		status, err := p.source.GetStatus(ctx, environmentID)
		if err != nil {
			return "", err
		}
		if status != StatusDeploying && status != StatusDeleting {
			return status, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrWaitTimeout
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
