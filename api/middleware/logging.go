package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/otofix/storefront-backend/pkg/logger"
)

// Probe and scrape endpoints are hit every few seconds; logging them drowns
// out storefront traffic.
func quietPath(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/healthz")
}

func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			if logg != nil {
				fields := map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				}
				if r.URL.RawQuery != "" {
					fields["query"] = r.URL.RawQuery
				}
				ctx = logg.WithFields(ctx, fields)
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			if logg != nil {
				logg.Info(ctx, "request.start")
			}

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"status":      rec.status,
					"duration_ms": time.Since(start).Milliseconds(),
				})
				logg.Info(ctx, "request.complete")
			}
		})
	}
}
