package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/otofix/storefront-backend/api/responses"
	"github.com/otofix/storefront-backend/pkg/config"
	"github.com/otofix/storefront-backend/pkg/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Otofix-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status. A down ERP degrades readiness
// but does not fail it; the storefront can still serve cached tenants and
// carts.
func HealthReady(cfg *config.Config, erpPing, redisPing Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Otofix-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if redisPing != nil {
			checks["redis"] = "ok"
			if err := redisPing.Ping(ctx); err != nil {
				checks["redis"] = "down"
				ready = false
				if logg != nil {
					logg.Warn(r.Context(), "readiness: redis unreachable")
				}
			}
		}
		if erpPing != nil {
			checks["erp"] = "ok"
			if err := erpPing.Ping(ctx); err != nil {
				checks["erp"] = "degraded"
				if logg != nil {
					logg.Warn(r.Context(), "readiness: erp unreachable")
				}
			}
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "unavailable"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{"status": state, "checks": checks})
	}
}
