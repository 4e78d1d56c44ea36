// Package httptransport assembles the public HTTP surface: middleware,
// certificate endpoints, health probes and metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certifier/internal/certificate/handler"
	"certifier/internal/platform/health"
	"certifier/pkg/platform/middleware/auth"
	"certifier/pkg/platform/middleware/request"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Dependencies carries everything the router mounts.
type Dependencies struct {
	Certificates      *handler.Handler
	Health            *health.Handler
	Validator         auth.JWTValidator
	CallbackTokenHash string
	Gatherer          prometheus.Gatherer
	RequestMetrics    *request.Metrics
	Logger            *slog.Logger
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.Latency(deps.RequestMetrics))
	r.Use(request.BodyLimit(maxBodyBytes))

	deps.Health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(timeout(requestTimeout))
		deps.Certificates.Register(r,
			chain(request.ContentTypeJSON, auth.OptionalAuth(deps.Validator, deps.Logger)),
			auth.RequireCallbackToken(deps.CallbackTokenHash, deps.Logger),
		)
	})

	return r
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"timeout"}`)
	}
}

func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
