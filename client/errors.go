package client

import (
	"errors"

	"github.com/lokis-perfume/storefront/client/internal/api"
	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
	"github.com/lokis-perfume/storefront/client/internal/shardqueue"
)

// APIError is the normalized failure returned by every endpoint method.
type APIError = apierrors.APIError

// ErrorCategory tells retry policies whether a failure may go away.
type ErrorCategory = apierrors.ErrorCategory

const (
	Recoverable   = apierrors.Recoverable
	Irrecoverable = apierrors.Irrecoverable
)

// Codes produced by the client itself. Any other Code was sent by a backend.
const (
	CodeNetwork = apierrors.CodeNetwork
	CodeHTTP    = apierrors.CodeHTTP
	CodeEncode  = apierrors.CodeEncode
	CodeDecode  = apierrors.CodeDecode
)

var (
	// ErrMissingID is returned without a request when a path ID is blank.
	ErrMissingID = api.ErrMissingID

	// ErrQueueFull is matched by SubmitMutation errors caused by back-pressure.
	ErrQueueFull = shardqueue.ErrQueueFull

	// ErrClosed is returned by SubmitMutation and Await after Close.
	ErrClosed = shardqueue.ErrExecutorClosed
)

// AsAPIError extracts the *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) { return apierrors.As(err) }

// IsNetworkError reports whether no HTTP response was obtained.
func IsNetworkError(err error) bool { return HasCode(err, CodeNetwork) }

// HasCode reports whether err carries the given normalized code.
func HasCode(err error, code string) bool {
	e, ok := apierrors.As(err)
	return ok && e.Code == code
}

// HasStatus reports whether err carries the given HTTP status.
func HasStatus(err error, status int) bool {
	e, ok := apierrors.As(err)
	return ok && e.Status == status
}

// IsBackPressure reports whether err is a full mutation queue.
func IsBackPressure(err error) bool { return errors.Is(err, ErrQueueFull) }
