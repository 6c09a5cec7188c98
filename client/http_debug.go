package client

import (
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// debugTransport dumps every request and response at debug level.
//
// Enable it with WithDebugLogging(true), STOREFRONT_DEBUG=true (or
// DEBUG=true), or config.Config.Debug. Bodies are logged in full, including
// credentials sent in a login form, so it is meant for local troubleshooting
// only. Bearer tokens are redacted from the dumped headers.
type debugTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", redactAuthorization(string(reqDump))).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		dt.log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// redactAuthorization masks the credential of an Authorization header line
// in a wire dump.
func redactAuthorization(dump string) string {
	lines := strings.Split(dump, "\r\n")
	for i, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Authorization") {
			continue
		}
		scheme, _, _ := strings.Cut(strings.TrimSpace(value), " ")
		lines[i] = name + ": " + scheme + " [REDACTED]"
	}
	return strings.Join(lines, "\r\n")
}

// debugLoggingRequested reports whether STOREFRONT_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("STOREFRONT_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
