package middleware

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorderStub struct {
	mu     sync.Mutex
	errors []string
}

func (r *recorderStub) RecordAnalysis(op, method string)         {}
func (r *recorderStub) RecordCacheHit(op string)                 {}
func (r *recorderStub) RecordLatency(op string, seconds float64) {}
func (r *recorderStub) RecordSeriesLength(op string, n int)      {}

func (r *recorderStub) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, kind)
}

func TestComputePoolRunsFunc(t *testing.T) {
	p := NewComputePool(&recorderStub{}, WithWorkers(2))
	ran := false
	err := p.Run(context.Background(), "op", func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatalf("fn did not run")
	}
}

func TestComputePoolPropagatesError(t *testing.T) {
	p := NewComputePool(&recorderStub{}, WithWorkers(1))
	want := errors.New("fit failed")
	err := p.Run(context.Background(), "op", func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestComputePoolSaturation(t *testing.T) {
	rec := &recorderStub{}
	p := NewComputePool(rec, WithWorkers(1), WithAcquireWait(20*time.Millisecond))

	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = p.Run(context.Background(), "slow", func() error {
			<-release
			return nil
		})
		close(done)
	}()

	// Let the slow job take the only slot.
	time.Sleep(5 * time.Millisecond)

	err := p.Run(context.Background(), "fast", func() error { return nil })
	if err == nil || !strings.Contains(err.Error(), "saturated") {
		t.Fatalf("expected saturation error, got %v", err)
	}

	close(release)
	<-done

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.errors) != 1 || rec.errors[0] != "compute_pool_saturated" {
		t.Fatalf("unexpected error records: %v", rec.errors)
	}
}

func TestComputePoolContextCanceled(t *testing.T) {
	p := NewComputePool(&recorderStub{}, WithWorkers(1), WithAcquireWait(time.Second))

	release := make(chan struct{})
	go func() {
		_ = p.Run(context.Background(), "slow", func() error {
			<-release
			return nil
		})
	}()
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Run(ctx, "fast", func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)
}
