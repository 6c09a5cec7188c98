package client

import (
	"github.com/lokis-perfume/storefront/client/internal/shardqueue"
	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/client/internal/types"
	"github.com/lokis-perfume/storefront/config"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	RegisterRequest       = types.RegisterRequest
	LoginRequest          = types.LoginRequest
	ProductInput          = types.ProductInput
	CheckoutItem          = types.CheckoutItem
	CreatePurchaseRequest = types.CreatePurchaseRequest
	ProductFilter         = types.ProductFilter
	SearchRequest         = types.SearchRequest
	SortField             = types.SortField

	// Domain entities
	User         = types.User
	Product      = types.Product
	Purchase     = types.Purchase
	PurchaseItem = types.PurchaseItem

	// Responses
	LoginResponse  = types.LoginResponse
	ProductPage    = types.ProductPage
	FlushResponse  = types.FlushResponse
	HealthResponse = types.HealthResponse

	// Observability
	Hook        = transport.Hook
	HookFunc    = transport.HookFunc
	RequestInfo = transport.RequestInfo
	Outcome     = transport.Outcome

	Service     = config.Service
	QueueConfig = shardqueue.Config
)

const (
	RoleNormal = types.RoleNormal
	RoleAdmin  = types.RoleAdmin
)

// ParseSort parses "precio:desc,name" into sort fields.
func ParseSort(raw string) []SortField { return types.ParseSort(raw) }
