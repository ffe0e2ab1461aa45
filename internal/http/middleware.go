package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// RequestLogger assigns a request ID (reusing a well-formed inbound
// X-Request-Id), attaches a request scoped logger to the context and logs the
// outcome of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx := ContextWithRequestID(ContextWithLogger(r.Context(), logger), id)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			logger.InfoContext(ctx, "request completed",
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// RateLimit rejects requests once limiter refuses the client key. When the
// limiter itself fails the request proceeds if failOpen is set and gets a 503
// otherwise.
func RateLimit(limiter Limiter, logger *slog.Logger, failOpen bool) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := clientKey(r)
			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				responder.loggerFor(ctx).WarnContext(ctx, "rate limiter error", "error", err, "client", key)
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				responder.writeError(ctx, w, http.StatusServiceUnavailable, "rate_limiter_unavailable", errLimiterUnavailable)
				return
			}
			if !allowed {
				responder.loggerFor(ctx).WarnContext(ctx, "rate limit exceeded", "client", key)
				w.Header().Set("Retry-After", "1")
				responder.writeError(ctx, w, http.StatusTooManyRequests, "rate_limited", errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Tracing wraps handlers with OpenTelemetry server spans named after the route.
func Tracing(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
