package locks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	manager := NewMemoryManagerWithDelay(time.Millisecond)

	handle, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := handle.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	// The name is free again.
	again, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if err := again.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestAcquireIndependentNames(t *testing.T) {
	ctx := context.Background()
	manager := NewMemoryManagerWithDelay(time.Millisecond)

	a, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("acquire env-1: %v", err)
	}
	defer a.Release(ctx)

	b, err := manager.Acquire(ctx, "env-2")
	if err != nil {
		t.Fatalf("acquire env-2: %v", err)
	}
	defer b.Release(ctx)
}

func TestAcquireGivesUpAfterBoundedRetries(t *testing.T) {
	ctx := context.Background()
	manager := NewMemoryManagerWithDelay(time.Millisecond)

	handle, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer handle.Release(ctx)

	if _, err := manager.Acquire(ctx, "env-1"); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
}

func TestAcquireRetriesUntilReleased(t *testing.T) {
	ctx := context.Background()
	manager := NewMemoryManagerWithDelay(2 * time.Millisecond)

	handle, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = handle.Release(context.Background())
	}()

	contender, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("contender should win after release: %v", err)
	}
	_ = contender.Release(ctx)
}

func TestDoubleReleaseFails(t *testing.T) {
	ctx := context.Background()
	manager := NewMemoryManagerWithDelay(time.Millisecond)

	handle, err := manager.Acquire(ctx, "env-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := handle.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := handle.Release(ctx); err == nil {
		t.Fatal("second release must fail")
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	manager := NewMemoryManagerWithDelay(50 * time.Millisecond)

	handle, err := manager.Acquire(context.Background(), "env-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer handle.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := manager.Acquire(ctx, "env-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}
