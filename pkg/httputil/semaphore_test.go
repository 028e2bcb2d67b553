package httputil

import (
	"context"
	"testing"
	"time"
)

func TestSemaphoreTryAcquire(t *testing.T) {
	s := NewSemaphore(2)

	if !s.TryAcquire() || !s.TryAcquire() {
		t.Fatal("acquires within capacity must succeed")
	}
	if s.TryAcquire() {
		t.Error("acquire beyond capacity must fail")
	}
	if s.DroppedCount() != 1 {
		t.Errorf("dropped = %d, want 1", s.DroppedCount())
	}
	if s.InUse() != 2 {
		t.Errorf("in use = %d, want 2", s.InUse())
	}

	s.Release()
	if !s.TryAcquire() {
		t.Error("acquire after release must succeed")
	}
}

func TestSemaphoreAcquireContext(t *testing.T) {
	s := NewSemaphore(1)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Error("acquire at capacity must fail when the context expires")
	}
}

func TestSemaphoreDefaultCapacity(t *testing.T) {
	s := NewSemaphore(0)
	if !s.TryAcquire() {
		t.Error("zero capacity must fall back to a usable default")
	}
}

func TestSemaphoreExcessReleaseIsSafe(t *testing.T) {
	s := NewSemaphore(1)
	s.Release() // no matching acquire, must not panic or underflow
	if !s.TryAcquire() {
		t.Error("semaphore corrupted by excess release")
	}
}
