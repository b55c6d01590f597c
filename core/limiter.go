package core

import "context"

// CallLimiter bounds the number of simultaneously executing model calls
// within a run. A zero or negative max means unlimited; a nil limiter is
// valid and never blocks.
type CallLimiter struct {
	sem chan struct{}
}

// NewCallLimiter creates a new limiter allowing up to max concurrent calls.
// If max <= 0, calls are not limited.
func NewCallLimiter(max int) *CallLimiter {
	if max <= 0 {
		return &CallLimiter{}
	}
	return &CallLimiter{sem: make(chan struct{}, max)}
}

// Acquire blocks until a slot is available or the context is done. The
// returned error is the context error when acquisition was abandoned.
func (cl *CallLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cl == nil || cl.sem == nil {
		return nil
	}
	select {
	case cl.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot. Calling Release on an unlimited
// or nil limiter is a no-op.
func (cl *CallLimiter) Release() {
	if cl == nil || cl.sem == nil {
		return
	}
	<-cl.sem
}

// InFlight returns the number of currently held slots, or 0 for an unlimited
// limiter.
func (cl *CallLimiter) InFlight() int {
	if cl == nil || cl.sem == nil {
		return 0
	}
	return len(cl.sem)
}
