package shardqueue

import "context"

// Job is a unit of work executed by a ShardExecutor. A job may run more than
// once when it fails with a recoverable error, so it must be safe to repeat.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to a Job.
type JobFunc func(ctx context.Context) error

// Run implements Job. A nil JobFunc fails with ErrNilJob.
func (f JobFunc) Run(ctx context.Context) error {
	if f == nil {
		return ErrNilJob
	}
	return f(ctx)
}
