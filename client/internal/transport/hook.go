package transport

import (
	"context"
	"time"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
)

// RequestInfo describes one outbound call as seen by hooks.
type RequestInfo struct {
	ID      string // unique per call
	Service string // logical backend name, may be empty
	Method  string
	URL     string
	Authed  bool // a bearer token was attached
}

// Outcome is reported once a call has finished.
type Outcome struct {
	Status   int // 0 when no response was received
	Duration time.Duration
	Err      *apierrors.APIError // nil on success
}

// Hook observes requests. Hooks must not block for long and cannot change
// the result of a call.
type Hook interface {
	RequestStarted(ctx context.Context, info RequestInfo)
	RequestFinished(ctx context.Context, info RequestInfo, out Outcome)
}

// HookFunc adapts plain functions to Hook. Either field may be nil.
type HookFunc struct {
	Started  func(ctx context.Context, info RequestInfo)
	Finished func(ctx context.Context, info RequestInfo, out Outcome)
}

// RequestStarted implements Hook.
func (f HookFunc) RequestStarted(ctx context.Context, info RequestInfo) {
	if f.Started != nil {
		f.Started(ctx, info)
	}
}

// RequestFinished implements Hook.
func (f HookFunc) RequestFinished(ctx context.Context, info RequestInfo, out Outcome) {
	if f.Finished != nil {
		f.Finished(ctx, info, out)
	}
}

// hookChain fans out to several hooks in registration order.
type hookChain []Hook

func (c hookChain) RequestStarted(ctx context.Context, info RequestInfo) {
	for _, h := range c {
		h.RequestStarted(ctx, info)
	}
}

func (c hookChain) RequestFinished(ctx context.Context, info RequestInfo, out Outcome) {
	for _, h := range c {
		h.RequestFinished(ctx, info, out)
	}
}

// Chain combines hooks, dropping nil entries. It returns nil when no hook
// remains.
func Chain(hooks ...Hook) Hook {
	out := make(hookChain, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
