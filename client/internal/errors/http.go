package errors

import (
	"fmt"
	"net/http"
)

// categoryForStatus maps HTTP status codes to error categories.
func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == 0:
		return Recoverable
	case status >= 400 && status < 500:
		switch status {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case status >= 500 && status < 600:
		return Recoverable
	default:
		// 2xx responses carrying an error envelope are application errors.
		return Irrecoverable
	}
}

// NewNetworkError builds the error reported when no response was obtained.
func NewNetworkError(cause error) *APIError {
	return &APIError{
		Code:    CodeNetwork,
		Message: NetworkMessage,
		Status:  0,
		Cause:   cause,
	}
}

// NewHTTPError builds the error reported for a failed response whose body
// could not be parsed. statusText is the response's reason phrase.
func NewHTTPError(status int, statusText string) *APIError {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	if statusText == "" {
		statusText = FallbackMessage(status)
	}
	return &APIError{Code: CodeHTTP, Message: statusText, Status: status}
}

// NewEncodeError wraps a request body serialization failure.
func NewEncodeError(cause error) *APIError {
	return &APIError{
		Code:    CodeEncode,
		Message: fmt.Sprintf("could not encode request body: %v", cause),
		Cause:   cause,
	}
}

// NewDecodeError wraps a failure to decode unwrapped data into the expected
// type. operation names the endpoint, e.g. "get product".
func NewDecodeError(operation string, cause error) *APIError {
	return &APIError{
		Code:    CodeDecode,
		Message: fmt.Sprintf("%s: unexpected response data: %v", operation, cause),
		Cause:   cause,
	}
}

// FallbackMessage is used when a failed response carries no message.
func FallbackMessage(status int) string {
	return fmt.Sprintf("request failed (%d)", status)
}
