// CLAUDE:SUMMARY Cross-cutting endpoint middlewares: request ids (uuid), structured slog logging, HTTP request id propagation.
package kit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id over HTTP.
const RequestIDHeader = "X-Request-ID"

// EnsureRequestID returns ctx with a request id, generating one if absent.
func EnsureRequestID(ctx context.Context) context.Context {
	if GetRequestID(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, uuid.NewString())
}

// RequestID makes sure every call has a request id.
func RequestID() Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			return next(EnsureRequestID(ctx), request)
		}
	}
}

// Logging logs each call with its duration. Failures are logged at warn.
func Logging(logger *slog.Logger, name string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, request)
			attrs := []any{
				"endpoint", name,
				"transport", GetTransport(ctx),
				"request_id", GetRequestID(ctx),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("endpoint failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("endpoint done", attrs...)
			}
			return resp, err
		}
	}
}

// HTTPRequestID propagates or assigns X-Request-ID and tags the request
// context with the HTTP transport.
func HTTPRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := WithTransport(WithRequestID(r.Context(), id), TransportHTTP)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
