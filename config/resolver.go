package config

import (
	"os"
	"strings"
)

// Default base URLs used when no environment override is present. Each
// backend listens on its own local port.
const (
	DefaultUsersBaseURL    = "http://localhost:8080"
	DefaultProductsBaseURL = "http://localhost:8081"
	DefaultSearchBaseURL   = "http://localhost:8082"
)

// LookupFunc reports the value of an environment variable and whether it was
// set. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Service identifies one of the three backends.
type Service string

const (
	ServiceUsers    Service = "users"
	ServiceProducts Service = "products"
	ServiceSearch   Service = "search"
)

// Services lists every backend in a stable order.
var Services = []Service{ServiceUsers, ServiceProducts, ServiceSearch}

// Target describes how the base URL of a service is discovered: the
// environment variables probed in order and the fallback used when none of
// them carries a value.
type Target struct {
	Keys     []string
	Fallback string
}

// Targets maps each service to its probe list.
var Targets = map[Service]Target{
	ServiceUsers: {
		Keys:     []string{"STOREFRONT_USERS_API_BASE_URL", "USERS_API_BASE_URL", "VITE_USERS_API_BASE_URL"},
		Fallback: DefaultUsersBaseURL,
	},
	ServiceProducts: {
		Keys:     []string{"STOREFRONT_PRODUCTS_API_BASE_URL", "PRODUCTS_API_BASE_URL", "VITE_PRODUCTS_API_BASE_URL"},
		Fallback: DefaultProductsBaseURL,
	},
	ServiceSearch: {
		Keys:     []string{"STOREFRONT_SEARCH_API_BASE_URL", "SEARCH_API_BASE_URL", "VITE_SEARCH_API_BASE_URL"},
		Fallback: DefaultSearchBaseURL,
	},
}

// ResolveBaseURL returns the first non-blank value among keys, or fallback
// when none is set. A single trailing slash is removed from the result. It
// never fails; an empty result means "same origin as the caller".
func ResolveBaseURL(lookup LookupFunc, keys []string, fallback string) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value := fallback
	for _, key := range keys {
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			value = trimmed
			break
		}
	}
	return strings.TrimSuffix(value, "/")
}
