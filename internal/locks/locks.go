// Package locks provides a named advisory lock backed by a sentinel row.
// Whoever inserts the row holds the lock; contenders retry the insert a
// bounded number of times before giving up.
package locks

import (
	"context"
	"errors"
	"time"
)

// MaxAcquireAttempts bounds how often an acquire retries a contended name
// before failing.
const MaxAcquireAttempts = 10

// RetryDelay is the pause between acquire attempts.
const RetryDelay = 100 * time.Millisecond

// ErrLockHeld is returned once the retry bound is exhausted.
var ErrLockHeld = errors.New("locks: name is held")

// Handle is an acquired lock. Release returns the name to circulation;
// releasing twice is an error.
type Handle interface {
	Release(ctx context.Context) error
}

// Manager hands out named locks.
type Manager interface {
	// Acquire takes the named lock, retrying up to MaxAcquireAttempts
	// times while another holder has it.
	Acquire(ctx context.Context, name string) (Handle, error)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
