package httputil

import (
	"context"
	"testing"
	"time"
)

func TestPoolAcquireRoundRobin(t *testing.T) {
	p := NewPool(time.Second)
	defer p.Close()

	first := p.Acquire()
	if first == nil || first.Client == nil {
		t.Fatal("Acquire() returned nil identity")
	}
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1", p.Size())
	}

	// With a single identity, rotation returns the same one.
	if second := p.Acquire(); second != first {
		t.Error("expected round-robin over a single identity to repeat it")
	}
}

func TestPoolAcquireFresh(t *testing.T) {
	p := NewPool(time.Second)
	defer p.Close()

	a := p.Acquire()
	b := p.AcquireFresh()
	if a == b {
		t.Error("AcquireFresh() must mint a new identity")
	}
	if a.ID == b.ID {
		t.Error("fresh identity must have a distinct session id")
	}
	if p.Size() != 2 {
		t.Errorf("Size() = %d, want 2", p.Size())
	}
}

func TestIdentityHeaders(t *testing.T) {
	p := NewPool(time.Second)
	defer p.Close()

	id := p.Acquire()
	if id.Headers["User-Agent"] == "" {
		t.Error("identity is missing a User-Agent header")
	}
	if id.Headers["Accept"] == "" {
		t.Error("identity is missing an Accept header")
	}
}

func TestSemaphoreBounds(t *testing.T) {
	s := NewSemaphore(1)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Fatal("second Acquire() should block until the context expires")
	}

	s.Release()
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() after Release() = %v", err)
	}
}
