package middleware

import (
	"context"
	"fmt"
	"time"

	domrepo "QuantPulse/internal/domain/repository"
)

// ComputePool bounds the number of CPU-heavy fits running at once so a burst
// of requests cannot pin every core. The analytical code stays synchronous;
// the pool is purely a scheduling layer in front of it.
type ComputePool struct {
	sem         chan struct{}
	metrics     domrepo.Metrics
	acquireWait time.Duration
}

type PoolOption func(*ComputePool)

// WithWorkers sets the number of concurrently running computations.
func WithWorkers(n int) PoolOption {
	return func(p *ComputePool) {
		if n > 0 {
			p.sem = make(chan struct{}, n)
		}
	}
}

// WithAcquireWait caps how long a request may queue for a worker slot.
func WithAcquireWait(d time.Duration) PoolOption {
	return func(p *ComputePool) {
		if d > 0 {
			p.acquireWait = d
		}
	}
}

// NewComputePool creates a pool with the given metrics recorder.
func NewComputePool(metrics domrepo.Metrics, opts ...PoolOption) *ComputePool {
	p := &ComputePool{
		sem:         make(chan struct{}, 4),
		metrics:     metrics,
		acquireWait: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes fn on a worker slot, waiting up to the configured acquire
// timeout. The caller's context cancels both the wait and is passed through
// deadline checks before the computation starts.
func (p *ComputePool) Run(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	timer := time.NewTimer(p.acquireWait)
	defer timer.Stop()

	select {
	case p.sem <- struct{}{}:
	case <-timer.C:
		p.metrics.RecordError("compute_pool_saturated")
		return fmt.Errorf("compute pool saturated for %s", op)
	case <-ctx.Done():
		p.metrics.RecordError("compute_pool_canceled")
		return ctx.Err()
	}
	defer func() { <-p.sem }()

	if err := ctx.Err(); err != nil {
		return err
	}
	err := fn()
	p.metrics.RecordLatency(op, time.Since(start).Seconds())
	return err
}
