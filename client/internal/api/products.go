package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/client/internal/types"
)

// ListProducts returns one page of the catalog.
func ListProducts(ctx context.Context, d Doer, baseURL string, filter types.ProductFilter) (*types.ProductPage, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceProducts,
		Path:    "/products",
		Query:   filter.Query(),
	})
	if err != nil {
		return nil, err
	}
	return decode[types.ProductPage]("list products", raw)
}

// GetProduct fetches a single product.
func GetProduct(ctx context.Context, d Doer, baseURL, id string) (*types.Product, error) {
	path, err := pathID("/products", id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	raw, err := d.Do(ctx, baseURL, transport.Request{Service: serviceProducts, Path: path})
	if err != nil {
		return nil, err
	}
	return decode[types.Product]("get product", raw)
}

// CreateProduct adds a product to the catalog.
func CreateProduct(ctx context.Context, d Doer, baseURL string, in types.ProductInput, token string) (*types.Product, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceProducts,
		Method:  http.MethodPost,
		Path:    "/products",
		Body:    in,
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Product]("create product", raw)
}

// UpdateProduct replaces the editable fields of a product.
func UpdateProduct(ctx context.Context, d Doer, baseURL, id string, in types.ProductInput, token string) (*types.Product, error) {
	path, err := pathID("/products", id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceProducts,
		Method:  http.MethodPut,
		Path:    path,
		Body:    in,
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Product]("update product", raw)
}

// DeleteProduct removes a product. The backend answers 204 No Content.
func DeleteProduct(ctx context.Context, d Doer, baseURL, id, token string) error {
	path, err := pathID("/products", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	_, err = d.Do(ctx, baseURL, transport.Request{
		Service: serviceProducts,
		Method:  http.MethodDelete,
		Path:    path,
		Token:   token,
	})
	return err
}
