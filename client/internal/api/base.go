package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/config"
)

// Doer performs one request against a base URL and returns the unwrapped
// data. *transport.Executor implements it.
type Doer interface {
	Do(ctx context.Context, baseURL string, req transport.Request) (json.RawMessage, error)
}

// Service labels attached to requests for hooks and metrics.
const (
	serviceUsers    = string(config.ServiceUsers)
	serviceProducts = string(config.ServiceProducts)
	serviceSearch   = string(config.ServiceSearch)
)

var errEmptyData = errors.New("response carried no data")

// ErrMissingID is returned before any request is sent when a path
// parameter is blank.
var ErrMissingID = errors.New("id is required")

// decode unmarshals raw into a new T. An absent payload is a decode error
// because every caller of decode expects an object.
func decode[T any](op string, raw json.RawMessage) (*T, error) {
	if raw == nil {
		return nil, apierrors.NewDecodeError(op, errEmptyData)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apierrors.NewDecodeError(op, err)
	}
	return &out, nil
}

// decodeList unmarshals raw into a slice; an absent payload is an empty list.
func decodeList[T any](op string, raw json.RawMessage) ([]T, error) {
	out := []T{}
	if raw == nil {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apierrors.NewDecodeError(op, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// pathID escapes a single path segment.
func pathID(prefix, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}
	return prefix + "/" + url.PathEscape(id), nil
}
