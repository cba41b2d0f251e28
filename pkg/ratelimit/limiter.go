// Package ratelimit provides the admission control used for bulk
// knowledge-base writes: a counting semaphore bounding in-flight requests
// plus a fixed pacing interval between submissions.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most maxConcurrent holders at a time and spaces
// successive admissions by at least the pacing interval, regardless of slot
// availability.
type Limiter struct {
	slots    chan struct{}
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

// New builds a limiter. maxConcurrent below 1 is treated as 1; a zero
// interval disables pacing.
func New(maxConcurrent int, interval time.Duration) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Limiter{
		slots:    make(chan struct{}, maxConcurrent),
		interval: interval,
	}
}

// Acquire blocks until the pacing interval has elapsed since the previous
// admission and a concurrency slot is free. Every successful Acquire must be
// paired with Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.pace(ctx); err != nil {
		return err
	}

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a concurrency slot. Calling Release without a matching
// Acquire panics instead of corrupting the slot count.
func (l *Limiter) Release() {
	select {
	case <-l.slots:
	default:
		panic("ratelimit: Release without matching Acquire")
	}
}

func (l *Limiter) pace(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	l.next = now.Add(wait + l.interval)
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
