package api

import (
	"context"
	"net/http"

	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/client/internal/types"
)

// CreatePurchase checks out the given items for the token's owner. Stock
// and pricing are validated by the backend.
func CreatePurchase(ctx context.Context, d Doer, baseURL string, items []types.CheckoutItem, token string) (*types.Purchase, error) {
	if items == nil {
		items = []types.CheckoutItem{}
	}
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceProducts,
		Method:  http.MethodPost,
		Path:    "/compras",
		Body:    types.CreatePurchaseRequest{Items: items},
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Purchase]("create purchase", raw)
}

// ListMyPurchases returns the purchase history of the token's owner.
func ListMyPurchases(ctx context.Context, d Doer, baseURL, token string) ([]types.Purchase, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceProducts,
		Path:    "/compras/mias",
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[types.Purchase]("list purchases", raw)
}
