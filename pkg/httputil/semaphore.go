package httputil

import "context"

// Semaphore bounds the number of simultaneous outstanding requests to one
// distributor. Both Mouser and DigiKey enforce low per-key concurrency
// limits; exceeding them trips their rate limiter for minutes.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore creates a semaphore with n slots. n < 1 is treated as 1.
func NewSemaphore(n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	return &Semaphore{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is available or the context is cancelled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot. Must be called exactly once per successful Acquire.
func (s *Semaphore) Release() {
	<-s.slots
}
