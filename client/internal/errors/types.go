// Package errors defines the normalized error returned by every storefront
// API call, along with a recoverability classification callers can use to
// drive their own retry policy.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Codes produced by the client itself. Any other code is passed through
// verbatim from the backend's error envelope.
const (
	// CodeNetwork: the request never reached the server or the response
	// never fully arrived (including cancellation).
	CodeNetwork = "NETWORK_ERROR"
	// CodeHTTP: non-2xx status without a structured error body.
	CodeHTTP = "HTTP_ERROR"
	// CodeEncode: the request body could not be serialized.
	CodeEncode = "ENCODE_ERROR"
	// CodeDecode: the unwrapped data did not match the expected shape.
	CodeDecode = "DECODE_ERROR"
)

// NetworkMessage is the user-facing message attached to CodeNetwork errors.
const NetworkMessage = "could not connect to the server"

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors may succeed when retried: network failures, 408,
	// 429 and 5xx responses.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail the same way on every attempt: 4xx
	// responses, encoding and decoding failures.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// APIError is the normalized failure shape. Status is the HTTP status of the
// response, or 0 when no response was obtained.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`

	// Cause is the underlying transport or codec error, when there is one.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes Cause to errors.Is / errors.As.
func (e *APIError) Unwrap() error { return e.Cause }

// Is matches another *APIError by code, so a zero-message sentinel such as
// &APIError{Code: "NOT_FOUND"} can be used with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	if t.Status != 0 && t.Status != e.Status {
		return false
	}
	return t.Code != "" || t.Status != 0
}

// Category classifies the error for retry decisions.
func (e *APIError) Category() ErrorCategory {
	switch e.Code {
	case CodeNetwork:
		return Recoverable
	case CodeEncode, CodeDecode:
		return Irrecoverable
	}
	return categoryForStatus(e.Status)
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsIrrecoverable reports whether err should not be retried. Errors that are
// not *APIError values are considered recoverable.
func IsIrrecoverable(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := As(err); ok {
		return apiErr.Category() == Irrecoverable
	}
	return false
}
