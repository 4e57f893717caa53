// Package ops exposes the operational HTTP surface: health, readiness
// and Prometheus metrics. It is separate from the line protocol and
// can be disabled entirely by leaving its address empty.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"StockLine/pkg/kit"
)

// Pinger reports readiness of the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	Store    Pinger

	MetricsEnabled bool
	MetricsToken   string
	RateLimit      int // requests per minute per client IP, 0 disables
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	if deps.RateLimit > 0 {
		r.Use(kit.NewIPRateLimiter(deps.RateLimit, time.Minute).Middleware)
	}

	if deps.Registry != nil {
		httpMetrics := kit.NewHTTPMetrics(deps.Registry)
		r.Use(httpMetrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 1*time.Second)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, req, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return r
}
