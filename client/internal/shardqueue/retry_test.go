package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
)

// failures collects what the error handler saw.
type failures struct {
	mu   sync.Mutex
	keys []string
	errs []error
}

func (f *failures) handle(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.errs = append(f.errs, err)
}

func (f *failures) snapshot() ([]string, []error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...), append([]error(nil), f.errs...)
}

func fastRetryConfig(f *failures) Config {
	return Config{Shards: 1, QueueSize: 8, MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxInterval: 5 * time.Millisecond, ErrorHandler: f.handle}
}

func TestRetry_RecoverableUntilSuccess(t *testing.T) {
	var f failures
	ex := NewShardExecutor(fastRetryConfig(&f))
	defer ex.Stop()

	var attempts int32
	err := ex.Submit(context.Background(), "prod-1", JobFunc(func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return apierrors.NewHTTPError(503, "Service Unavailable")
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ex.Barrier(context.Background(), "prod-1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if keys, _ := f.snapshot(); len(keys) != 0 {
		t.Fatalf("error handler should not fire on eventual success, got %v", keys)
	}
}

func TestRetry_IrrecoverableFailsFast(t *testing.T) {
	var f failures
	ex := NewShardExecutor(fastRetryConfig(&f))
	defer ex.Stop()

	var attempts int32
	forbidden := &apierrors.APIError{Code: "FORBIDDEN", Message: "Admin role required", Status: 403}
	_ = ex.Submit(context.Background(), "prod-2", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return forbidden
	}))
	if err := ex.Barrier(context.Background(), "prod-2"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("irrecoverable error retried: %d attempts", got)
	}
	keys, errs := f.snapshot()
	if len(errs) != 1 || keys[0] != "prod-2" || !errors.Is(errs[0], forbidden) {
		t.Fatalf("unexpected handler calls: %v %v", keys, errs)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	var f failures
	ex := NewShardExecutor(fastRetryConfig(&f))
	defer ex.Stop()

	var attempts int32
	_ = ex.Submit(context.Background(), "prod-3", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return apierrors.NewNetworkError(errors.New("connection refused"))
	}))
	if err := ex.Barrier(context.Background(), "prod-3"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected MaxAttempts=3 attempts, got %d", got)
	}
	_, errs := f.snapshot()
	if len(errs) != 1 || !errors.Is(errs[0], &apierrors.APIError{Code: apierrors.CodeNetwork}) {
		t.Fatalf("expected a single NETWORK_ERROR report, got %v", errs)
	}
}

func TestRetry_PanicAndNilJobFailFast(t *testing.T) {
	var f failures
	ex := NewShardExecutor(fastRetryConfig(&f))
	defer ex.Stop()

	var attempts int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		panic("boom")
	}))
	var nilJob JobFunc
	_ = ex.Submit(context.Background(), "k", nilJob)
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("panicking job retried: %d attempts", got)
	}
	_, errs := f.snapshot()
	if len(errs) != 2 {
		t.Fatalf("expected two failures, got %v", errs)
	}
	var pe *PanicError
	if !errors.As(errs[0], &pe) || pe.Value != "boom" {
		t.Fatalf("expected PanicError, got %v", errs[0])
	}
	if !errors.Is(errs[1], ErrNilJob) {
		t.Fatalf("expected ErrNilJob, got %v", errs[1])
	}
}

func TestRetry_JobContextCanceledDuringBackoff(t *testing.T) {
	var f failures
	cfg := fastRetryConfig(&f)
	cfg.MaxAttempts = 10
	cfg.BaseBackoff = time.Second
	cfg.MaxInterval = time.Second
	ex := NewShardExecutor(cfg)
	defer ex.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan struct{})
	var once sync.Once
	_ = ex.Submit(ctx, "k", JobFunc(func(context.Context) error {
		once.Do(func() { close(first) })
		return apierrors.NewHTTPError(502, "Bad Gateway")
	}))
	<-first
	cancel()

	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	_, errs := f.snapshot()
	if len(errs) != 1 || !errors.Is(errs[0], context.Canceled) {
		t.Fatalf("expected context.Canceled report, got %v", errs)
	}
}
