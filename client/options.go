package client

// Functional options applied by New, in order, before the debug transport
// and the request executor are built.

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/lokis-perfume/storefront/client/internal/transport"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPClient sends requests through a copy of hc. Apply it before
// WithHTTPTimeout, which edits the copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout bounds every request, including reading the body. The
// default is no timeout: callers are expected to use context deadlines.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging logs full request and response dumps at debug level.
// Authorization headers are redacted, bodies are not; keep it out of
// production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = c.debug || enabled
		return nil
	}
}

// WithHook observes every request. Hooks run in the order they were added.
func WithHook(h Hook) Option {
	return func(c *Client) error {
		if h == nil {
			return errors.New("hook must not be nil")
		}
		c.hooks = append(c.hooks, h)
		return nil
	}
}

// WithLogger sets the logger used by the debug transport and the mutation
// queue. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithMetrics registers request metrics on reg (nil means the default
// registerer) and records every call. Several clients may share reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) error {
		m, err := NewMetricsHook(reg)
		if err != nil {
			return err
		}
		c.hooks = append(c.hooks, m)
		return nil
	}
}

// WithOrigin sets the origin prefixed to every path in same-origin mode.
func WithOrigin(origin string) Option {
	return func(c *Client) error {
		c.cfg.Origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		return nil
	}
}

// WithBaseURL overrides the resolved base URL of one backend.
func WithBaseURL(svc Service, baseURL string) Option {
	return func(c *Client) error {
		c.cfg.SetBaseURL(svc, strings.TrimSuffix(strings.TrimSpace(baseURL), "/"))
		return nil
	}
}

// WithQueueConfig replaces the mutation queue settings loaded from the
// STOREFRONT_QUEUE_* environment. Zero fields take defaults.
func WithQueueConfig(qc QueueConfig) Option {
	return func(c *Client) error {
		c.queueCfg = qc
		return nil
	}
}

// WithMutationErrorHandler receives mutations that failed for good. The
// default logs them. fn runs on a queue worker and must not block.
func WithMutationErrorHandler(fn func(key string, err error)) Option {
	return func(c *Client) error {
		c.onMutateErr = fn
		return nil
	}
}

var _ transport.Hook = (*MetricsHook)(nil)
