package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ChiRoutePatternOrPath labels HTTP metrics with the chi route pattern
// so /healthz, /readyz and /metrics each get a stable series instead of
// one per raw path.
func ChiRoutePatternOrPath(r *http.Request) string {
	if rp := chi.RouteContext(r.Context()).RoutePattern(); rp != "" {
		return rp
	}
	return r.URL.Path
}
