package client

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lokis-perfume/storefront/client/internal/transport"
)

// LogHook returns a Hook that writes one event per finished request: debug
// on success, warn on failure. Starts are logged at trace level.
func LogHook(l zerolog.Logger) Hook {
	return transport.HookFunc{
		Started: func(_ context.Context, info transport.RequestInfo) {
			l.Trace().Str("call_id", info.ID).Str("service", info.Service).Str("method", info.Method).Str("url", info.URL).Msg("request started")
		},
		Finished: func(_ context.Context, info transport.RequestInfo, out transport.Outcome) {
			ev := l.Debug()
			if out.Err != nil {
				ev = l.Warn().Str("code", out.Err.Code).Str("error", out.Err.Message)
			}
			ev.Str("call_id", info.ID).
				Str("service", info.Service).
				Str("method", info.Method).
				Str("url", info.URL).
				Bool("authed", info.Authed).
				Int("status", out.Status).
				Dur("duration", out.Duration).
				Msg("request finished")
		},
	}
}
