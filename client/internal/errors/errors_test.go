package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		err  *APIError
		want ErrorCategory
	}{
		{NewNetworkError(context.Canceled), Recoverable},
		{&APIError{Code: CodeHTTP, Status: 500}, Recoverable},
		{&APIError{Code: "RATE_LIMITED", Status: 429}, Recoverable},
		{&APIError{Code: CodeHTTP, Status: 408}, Recoverable},
		{&APIError{Code: "AUTHENTICATION_FAILED", Status: 401}, Irrecoverable},
		{&APIError{Code: "NOT_FOUND", Status: 404}, Irrecoverable},
		{&APIError{Code: "VALIDATION_ERROR", Status: 200}, Irrecoverable},
		{NewEncodeError(fmt.Errorf("bad")), Irrecoverable},
		{NewDecodeError("get product", fmt.Errorf("bad")), Irrecoverable},
	}
	for _, tt := range tests {
		if got := tt.err.Category(); got != tt.want {
			t.Errorf("%v: category %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestIsIrrecoverable(t *testing.T) {
	if IsIrrecoverable(nil) {
		t.Fatal("nil must not be irrecoverable")
	}
	if IsIrrecoverable(fmt.Errorf("plain")) {
		t.Fatal("plain errors are recoverable")
	}
	wrapped := fmt.Errorf("create product: %w", &APIError{Code: "FORBIDDEN", Status: 403})
	if !IsIrrecoverable(wrapped) {
		t.Fatal("wrapped 403 should be irrecoverable")
	}
}

func TestAPIError_IsAndUnwrap(t *testing.T) {
	err := fmt.Errorf("op: %w", &APIError{Code: "NOT_FOUND", Message: "missing", Status: 404})

	if !stderrors.Is(err, &APIError{Code: "NOT_FOUND"}) {
		t.Fatal("expected match on code")
	}
	if !stderrors.Is(err, &APIError{Status: 404}) {
		t.Fatal("expected match on status")
	}
	if stderrors.Is(err, &APIError{Code: "NOT_FOUND", Status: 500}) {
		t.Fatal("status mismatch must not match")
	}
	if stderrors.Is(err, &APIError{}) {
		t.Fatal("empty target must not match")
	}

	netErr := NewNetworkError(context.DeadlineExceeded)
	if !stderrors.Is(netErr, context.DeadlineExceeded) {
		t.Fatal("network error should unwrap to its cause")
	}
}

func TestNewHTTPError_Message(t *testing.T) {
	if got := NewHTTPError(502, "Bad Gateway").Message; got != "Bad Gateway" {
		t.Fatalf("message = %q", got)
	}
	if got := NewHTTPError(503, "").Message; got != "Service Unavailable" {
		t.Fatalf("message = %q", got)
	}
	if got := NewHTTPError(599, "").Message; got != "request failed (599)" {
		t.Fatalf("message = %q", got)
	}
}

func TestAPIError_ErrorString(t *testing.T) {
	if got := (&APIError{Code: "X", Message: "m", Status: 400}).Error(); got != "X (HTTP 400): m" {
		t.Fatalf("got %q", got)
	}
	if got := NewNetworkError(nil).Error(); got != "NETWORK_ERROR: "+NetworkMessage {
		t.Fatalf("got %q", got)
	}
}
