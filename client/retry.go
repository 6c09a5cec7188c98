package client

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
)

// RetryPolicy bounds Retry. Zero fields take the DefaultRetryPolicy values.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy tries three times, starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, InitialInterval: 200 * time.Millisecond, MaxInterval: 5 * time.Second}

// Retry calls fn until it succeeds, fails with an irrecoverable error, or
// the policy is exhausted. Only recoverable *APIError values (network
// failures, 408, 429, 5xx) are retried; anything else is returned at once.
//
// The endpoint methods never retry by themselves. Only wrap calls that are
// safe to repeat: a CreatePurchase retried after a lost response may buy
// twice.
func Retry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	_, err := RetryData(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryData is Retry for calls that return a value.
func RetryData[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(policy.MaxAttempts-1)), ctx)
	return backoff.RetryWithData(func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !shouldRetry(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b)
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	return p
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	e, ok := apierrors.As(err)
	return ok && e.Category() == apierrors.Recoverable
}
