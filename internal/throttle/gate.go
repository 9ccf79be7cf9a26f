// Package throttle provides the process-wide admission gate in front of the external LLM.
package throttle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultMinInterval is the minimum spacing between two admitted LLM calls.
const DefaultMinInterval = 60 * time.Second

// Gate serializes callers and paces them at least MinInterval apart.
// The semaphore is held only across the wait and the timestamp update, never
// across the admitted call itself.
type Gate struct {
	sem      *semaphore.Weighted
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex // guards last for Last(); writers also hold sem
	last time.Time

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
		if after != nil {
			g.after = after
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate creates a gate enforcing the given minimum interval.
// A non-positive interval admits callers one at a time without waiting.
func NewGate(interval time.Duration, opts ...Option) *Gate {
	g := &Gate{
		sem:      semaphore.NewWeighted(1),
		interval: interval,
		logger:   zap.NewNop(),
		now:      time.Now,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until the caller may issue its LLM call. The recorded timestamp
// is updated before the gate is released. On cancellation the timestamp is left
// unchanged and ctx.Err() is returned.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	g.mu.Lock()
	last := g.last
	g.mu.Unlock()

	if !last.IsZero() && g.interval > 0 {
		if wait := g.interval - g.now().Sub(last); wait > 0 {
			g.logger.Debug("throttling llm call", zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-g.after(wait):
			}
		}
	}

	g.mu.Lock()
	g.last = g.now()
	g.mu.Unlock()
	return nil
}

// Last returns the time of the most recent admission.
func (g *Gate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Interval returns the configured minimum interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}
