package locks

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryManager struct {
	mu    sync.Mutex
	held  map[string]time.Time
	delay time.Duration
}

// NewMemoryManager builds an in-process lock manager.
func NewMemoryManager() Manager {
	return &memoryManager{
		held:  make(map[string]time.Time),
		delay: RetryDelay,
	}
}

// NewMemoryManagerWithDelay builds a manager with a custom retry delay,
// which tests use to keep contention runs fast.
func NewMemoryManagerWithDelay(delay time.Duration) Manager {
	return &memoryManager{
		held:  make(map[string]time.Time),
		delay: delay,
	}
}

func (m *memoryManager) Acquire(ctx context.Context, name string) (Handle, error) {
	for attempt := 0; attempt < MaxAcquireAttempts; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, m.delay); err != nil {
				return nil, err
			}
		}
		if m.tryAcquire(name) {
			return &memoryHandle{manager: m, name: name}, nil
		}
	}
	return nil, ErrLockHeld
}

func (m *memoryManager) tryAcquire(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.held[name]; taken {
		return false
	}
	m.held[name] = time.Now().UTC()
	return true
}

type memoryHandle struct {
	manager  *memoryManager
	name     string
	released bool
	mu       sync.Mutex
}

func (h *memoryHandle) Release(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return errors.New("locks: already released")
	}
	h.released = true

	h.manager.mu.Lock()
	defer h.manager.mu.Unlock()
	delete(h.manager.held, h.name)
	return nil
}
