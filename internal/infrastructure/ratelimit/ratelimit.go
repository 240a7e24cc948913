package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MinInterval enforces a minimum time between permitted calls. Callers block
// in Acquire until the interval has elapsed since the last permitted call, or
// return early if the context is canceled. Safe for concurrent use, though the
// collector only ever calls it from one goroutine.
type MinInterval struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// Acquire blocks until at least Interval has passed since the previous
// permitted call, then records the current time as the new last-call mark.
func (m *MinInterval) Acquire(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	m.mu.Lock()
	m.last = time.Now()
	m.mu.Unlock()
	return nil
}
