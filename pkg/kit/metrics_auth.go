package kit

import (
	"net/http"
	"strings"
)

// MetricsAuth gates the ops /metrics route behind a static bearer token.
// An empty configured token rejects every request, so enabling metrics
// without setting METRICS_TOKEN exposes nothing.
func MetricsAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || !ok || presented != token {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
