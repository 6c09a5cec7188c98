package api

import (
	"context"
	"net/http"

	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/client/internal/types"
)

// SearchProducts queries the search index.
func SearchProducts(ctx context.Context, d Doer, baseURL string, req types.SearchRequest) (*types.ProductPage, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceSearch,
		Path:    "/search/products",
		Query:   req.Query(),
	})
	if err != nil {
		return nil, err
	}
	return decode[types.ProductPage]("search products", raw)
}

// FlushSearchCache drops cached search responses. Admin only.
func FlushSearchCache(ctx context.Context, d Doer, baseURL, token string) (*types.FlushResponse, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceSearch,
		Method:  http.MethodPost,
		Path:    "/search/cache/flush",
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &types.FlushResponse{}, nil
	}
	return decode[types.FlushResponse]("flush search cache", raw)
}

// Health probes /healthz on any backend. service only labels the request.
func Health(ctx context.Context, d Doer, baseURL, service string) (*types.HealthResponse, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{Service: service, Path: "/healthz"})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &types.HealthResponse{}, nil
	}
	return decode[types.HealthResponse]("health", raw)
}
