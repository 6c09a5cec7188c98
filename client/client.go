// Package client is the storefront SDK: one Client talks to the users,
// products and search backends, resolving each base URL from config and
// normalizing every failure into an *APIError.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lokis-perfume/storefront/client/internal/api"
	"github.com/lokis-perfume/storefront/client/internal/shardqueue"
	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/config"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	cfg    *config.Config
	http   *http.Client
	exec   *transport.Executor
	hooks  []transport.Hook
	logger zerolog.Logger
	debug  bool

	queueCfg    shardqueue.Config
	queueOnce   sync.Once
	queue       mutationQueue
	onMutateErr func(key string, err error)

	closed atomic.Bool
}

// New builds a Client from a resolved configuration. A nil cfg means
// config.Defaults(). cfg is copied; options never modify the caller's value.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	local := *cfg

	queueCfg, err := shardqueue.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load queue config: %w", err)
	}

	c := &Client{
		cfg:      &local,
		http:     &http.Client{Timeout: local.HTTPTimeout},
		logger:   zerolog.Nop(),
		debug:    local.Debug || debugLoggingRequested(),
		queueCfg: queueCfg,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.cfg.SameOrigin && c.cfg.Origin == "" {
		return nil, errors.New("same-origin mode needs an origin: set STOREFRONT_ORIGIN or use WithOrigin")
	}
	if c.debug {
		c.http.Transport = &debugTransport{base: c.http.Transport, log: c.logger}
	}
	c.exec = transport.NewExecutor(c.http, transport.Chain(c.hooks...))
	return c, nil
}

// NewFromEnv loads configuration with config.Load and calls New.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() config.Config { return *c.cfg }

// BaseURL returns the base URL requests to svc are sent to. In same-origin
// mode that is the configured origin.
func (c *Client) BaseURL(svc config.Service) string {
	if base := c.cfg.BaseURL(svc); base != "" {
		return base
	}
	return c.cfg.Origin
}

// Close stops the mutation queue, draining pending jobs. Safe to call
// multiple times.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	// Block a racing first SubmitMutation from starting a queue after this.
	c.queueOnce.Do(func() {})
	if c.queue != nil {
		c.queue.Stop()
	}
	return nil
}

// --------------------------------------------------------------------
// Users
// --------------------------------------------------------------------

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	return api.Register(ctx, c.exec, c.BaseURL(config.ServiceUsers), req)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return api.Login(ctx, c.exec, c.BaseURL(config.ServiceUsers), req)
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	return api.Me(ctx, c.exec, c.BaseURL(config.ServiceUsers), token)
}

// GetUser fetches a user by ID.
func (c *Client) GetUser(ctx context.Context, userID uint, token string) (*User, error) {
	return api.GetUser(ctx, c.exec, c.BaseURL(config.ServiceUsers), userID, token)
}

// --------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------

// ListProducts returns one page of the catalog.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	return api.ListProducts(ctx, c.exec, c.BaseURL(config.ServiceProducts), filter)
}

// GetProduct fetches a product by ID.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	return api.GetProduct(ctx, c.exec, c.BaseURL(config.ServiceProducts), id)
}

// CreateProduct adds a product.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput, token string) (*Product, error) {
	return api.CreateProduct(ctx, c.exec, c.BaseURL(config.ServiceProducts), in, token)
}

// UpdateProduct replaces the editable fields of a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput, token string) (*Product, error) {
	return api.UpdateProduct(ctx, c.exec, c.BaseURL(config.ServiceProducts), id, in, token)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id, token string) error {
	return api.DeleteProduct(ctx, c.exec, c.BaseURL(config.ServiceProducts), id, token)
}

// --------------------------------------------------------------------
// Purchases
// --------------------------------------------------------------------

// CreatePurchase checks out items for the token's owner.
func (c *Client) CreatePurchase(ctx context.Context, items []CheckoutItem, token string) (*Purchase, error) {
	return api.CreatePurchase(ctx, c.exec, c.BaseURL(config.ServiceProducts), items, token)
}

// ListMyPurchases returns the purchase history of the token's owner.
func (c *Client) ListMyPurchases(ctx context.Context, token string) ([]Purchase, error) {
	return api.ListMyPurchases(ctx, c.exec, c.BaseURL(config.ServiceProducts), token)
}

// --------------------------------------------------------------------
// Search
// --------------------------------------------------------------------

// SearchProducts queries the search index.
func (c *Client) SearchProducts(ctx context.Context, req SearchRequest) (*ProductPage, error) {
	return api.SearchProducts(ctx, c.exec, c.BaseURL(config.ServiceSearch), req)
}

// FlushSearchCache drops cached search responses. Admin only.
func (c *Client) FlushSearchCache(ctx context.Context, token string) (*FlushResponse, error) {
	return api.FlushSearchCache(ctx, c.exec, c.BaseURL(config.ServiceSearch), token)
}

// Health probes the /healthz endpoint of svc.
func (c *Client) Health(ctx context.Context, svc config.Service) (*HealthResponse, error) {
	return api.Health(ctx, c.exec, c.BaseURL(svc), string(svc))
}

// --------------------------------------------------------------------
// Ordered mutations
// --------------------------------------------------------------------

// SubmitMutation queues fn behind every mutation previously submitted for
// key and returns once it is accepted. fn runs on a background worker with
// ctx; recoverable failures are retried with exponential backoff and final
// failures go to the handler set by WithMutationErrorHandler.
//
// Callers must not submit concurrently for the same key.
func (c *Client) SubmitMutation(ctx context.Context, key string, fn func(context.Context) error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	q := c.mutations()
	if q == nil {
		return ErrClosed
	}
	return q.Submit(ctx, key, shardqueue.JobFunc(fn))
}

// Await blocks until every mutation submitted for key before the call has
// finished.
func (c *Client) Await(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}
	q := c.mutations()
	if q == nil {
		return ErrClosed
	}
	return q.Barrier(ctx, key)
}

// mutations starts the queue on first use. It returns nil once Close won.
func (c *Client) mutations() mutationQueue {
	c.queueOnce.Do(func() {
		cfg := c.queueCfg
		cfg.Logger = &c.logger
		cfg.ErrorHandler = c.handleMutationError
		c.queue = shardqueue.NewShardExecutor(cfg)
	})
	return c.queue
}

func (c *Client) handleMutationError(key string, err error) {
	if c.onMutateErr != nil {
		c.onMutateErr(key, err)
		return
	}
	c.logger.Error().Str("key", key).Err(err).Msg("mutation failed")
}
