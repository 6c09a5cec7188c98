// Package shardqueue runs catalog mutations on a small set of worker
// goroutines partitioned by key. Jobs that share a key (a product ID, for
// instance) run one at a time in submission order; different keys may run in
// parallel.
//
// Callers must not invoke Submit concurrently for the same key. FIFO order
// relies on that external serialisation.
package shardqueue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
)

type queuedJob struct {
	ctx context.Context
	key string
	job Job
}

// ShardExecutor executes Jobs on per-shard workers. Recoverable failures
// (network errors, 408, 429, 5xx) are retried with exponential backoff;
// everything else is reported once through Config.ErrorHandler.
type ShardExecutor struct {
	cfg    Config
	log    zerolog.Logger
	queues []chan queuedJob

	done   chan struct{}
	closed atomic.Bool

	wg sync.WaitGroup
}

// NewShardExecutor applies defaults to zero fields and starts the workers.
func NewShardExecutor(cfg Config) *ShardExecutor {
	cfg = cfg.withDefaults()
	p := &ShardExecutor{
		cfg:    cfg,
		log:    cfg.Logger.With().Str("component", "mutation_queue").Logger(),
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := range p.queues {
		ch := make(chan queuedJob, cfg.QueueSize)
		p.queues[i] = ch
		p.wg.Add(1)
		go p.runWorker(i, ch)
	}
	return p
}

// Submit enqueues job on the shard owning key.
//
//   - ErrExecutorClosed once Stop has been called.
//   - *QueueFullError (errors.Is ErrQueueFull) when the shard stays full for
//     EnqueueTimeout.
//   - ctx.Err() when ctx ends first.
//
// ctx also bounds the job itself: a job whose context is done by the time a
// worker reaches it is skipped.
func (p *ShardExecutor) Submit(ctx context.Context, key string, job Job) error {
	if p.closed.Load() {
		return ErrExecutorClosed
	}
	select {
	case <-p.done:
		return ErrExecutorClosed
	default:
	}

	shard := p.shardFor(key)
	ch := p.queues[shard]

	timer := time.NewTimer(p.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, key: key, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-p.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Key: key, Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier waits until every job submitted for key before the call has
// finished, including its retries.
func (p *ShardExecutor) Barrier(ctx context.Context, key string) error {
	reached := make(chan struct{})
	if err := p.Submit(ctx, key, JobFunc(func(context.Context) error {
		close(reached)
		return nil
	})); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-reached:
		return nil
	}
}

// Stop rejects new work, lets every worker drain its queue and waits for
// them. Jobs drained after Stop run once, without retries. Idempotent.
func (p *ShardExecutor) Stop() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.log.Debug().Int("shards", p.cfg.Shards).Msg("stopping, draining shards")
	close(p.done)
	p.wg.Wait()
	p.log.Debug().Msg("stopped")
}

// Close lets ShardExecutor satisfy io.Closer.
func (p *ShardExecutor) Close() error {
	p.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (p *ShardExecutor) runWorker(idx int, ch <-chan queuedJob) {
	defer p.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			stopped := p.process(label, qj)
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if stopped {
				p.drain(idx, ch)
				return
			}
		case <-p.done:
			p.drain(idx, ch)
			return
		}
	}
}

// process runs one job with retries. It reports true when Stop interrupted a
// backoff wait.
func (p *ShardExecutor) process(label string, qj queuedJob) bool {
	if err := qj.ctx.Err(); err != nil {
		attemptsTotal.WithLabelValues(label, "canceled").Inc()
		p.fail(qj.key, err)
		return false
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = p.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	for attempt := 1; ; attempt++ {
		err := p.runOnce(label, qj)
		if err == nil {
			attemptsTotal.WithLabelValues(label, "ok").Inc()
			return false
		}
		if !retryable(err) || attempt >= p.cfg.MaxAttempts {
			attemptsTotal.WithLabelValues(label, "failed").Inc()
			p.fail(qj.key, err)
			return false
		}

		attemptsTotal.WithLabelValues(label, "retry").Inc()
		wait := exp.NextBackOff()
		p.log.Debug().Str("key", qj.key).Int("attempt", attempt).Dur("wait", wait).Err(err).Msg("retrying mutation")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-p.done:
			timer.Stop()
			p.fail(qj.key, fmt.Errorf("%w: retry abandoned: %w", ErrExecutorClosed, err))
			return true
		case <-qj.ctx.Done():
			timer.Stop()
			attemptsTotal.WithLabelValues(label, "canceled").Inc()
			p.fail(qj.key, qj.ctx.Err())
			return false
		}
	}
}

func (p *ShardExecutor) drain(idx int, ch <-chan queuedJob) {
	label := labelFor(idx)
	drained := 0
	for {
		select {
		case qj := <-ch:
			if err := qj.ctx.Err(); err != nil {
				p.fail(qj.key, err)
				continue
			}
			if err := p.runOnce(label, qj); err != nil {
				p.fail(qj.key, err)
			}
			drained++
		default:
			if drained > 0 {
				p.log.Debug().Int("shard", idx).Int("drained", drained).Msg("drained pending mutations")
			}
			queueDepth.WithLabelValues(label).Set(0)
			return
		}
	}
}

// runOnce shields the worker from a panicking job.
func (p *ShardExecutor) runOnce(label string, qj queuedJob) (err error) {
	if qj.job == nil {
		return ErrNilJob
	}
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			p.log.Error().Str("key", qj.key).Interface("panic", r).Msg("mutation panicked")
			err = &PanicError{Value: r}
		}
	}()
	return qj.job.Run(qj.ctx)
}

func (p *ShardExecutor) fail(key string, err error) {
	p.log.Warn().Str("key", key).Err(err).Msg("mutation failed")
	if p.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("error handler panicked")
		}
	}()
	p.cfg.ErrorHandler(key, err)
}

func (p *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.cfg.Shards))
}

// retryable: panics, nil jobs, context errors and irrecoverable API errors
// fail fast; any other error is worth another attempt.
func retryable(err error) bool {
	var pe *PanicError
	switch {
	case errors.As(err, &pe), errors.Is(err, ErrNilJob):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return !apierrors.IsIrrecoverable(err)
}
