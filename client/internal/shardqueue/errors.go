package shardqueue

import (
	"errors"
	"fmt"
)

// ErrQueueFull reports back-pressure: the shard stayed full for the whole
// enqueue timeout.
var ErrQueueFull = errors.New("mutation queue full")

// ErrExecutorClosed is returned by Submit once Stop has been called.
var ErrExecutorClosed = errors.New("mutation queue closed")

// ErrNilJob is passed to the error handler when a nil job reaches a worker.
var ErrNilJob = errors.New("nil job")

// QueueFullError carries diagnostics while satisfying errors.Is(_, ErrQueueFull).
type QueueFullError struct {
	Key      string
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("mutation queue shard %d full for key %q (len=%d cap=%d)", e.Shard, e.Key, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }

// PanicError wraps a value recovered from a panicking job.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("job panicked: %v", e.Value) }
