package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type stubResult struct {
	err error
}

func (r stubResult) GetError() error { return r.err }

type stubJob struct {
	executed  *int32
	shouldErr bool
}

func (j stubJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.shouldErr {
		return stubResult{err: errors.New("job failed")}
	}
	return stubResult{}
}

func TestNewPoolDefaultsToOneWorker(t *testing.T) {
	if p := NewPool(0); p.workers != 1 {
		t.Errorf("workers = %d", p.workers)
	}
	if p := NewPool(-3); p.workers != 1 {
		t.Errorf("workers = %d", p.workers)
	}
}

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	const count = 20
	for i := 0; i < count; i++ {
		pool.Submit(stubJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("results = %d, want %d", len(results), count)
	}
	if got := atomic.LoadInt32(&executed); got != count {
		t.Errorf("executed = %d, want %d", got, count)
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(stubJob{shouldErr: true})
	pool.Submit(stubJob{})

	failures := 0
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPoolShutdownIsSafe(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Submitting after shutdown must not block or panic
	pool.Submit(stubJob{})
}
