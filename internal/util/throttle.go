package util

import (
	"context"
	"sync"
	"time"
)

// Throttle spaces requests to the same host by at least interval.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next map[string]time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		next:     make(map[string]time.Time),
	}
}

// Wait blocks until host may be contacted again, or ctx is done.
func (t *Throttle) Wait(ctx context.Context, host string) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}

	t.mu.Lock()
	now := time.Now()
	at := t.next[host]
	if at.Before(now) {
		at = now
	}
	t.next[host] = at.Add(t.interval)
	t.mu.Unlock()

	delay := time.Until(at)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
