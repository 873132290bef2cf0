package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/jvales/shopstate/api/responses"
	"github.com/jvales/shopstate/pkg/config"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/jvales/shopstate/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shopstate-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the store and, when wired, the catalog cache.
func HealthReady(cfg *config.Config, logg *logger.Logger, store kv.Pinger, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shopstate-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if store != nil {
			if err := store.Ping(ctx); err != nil {
				checks["store"] = "unreachable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "store ping failed", err)
				}
			} else {
				checks["store"] = "ok"
			}
		}

		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				checks["cache"] = "unreachable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "cache ping failed", err)
				}
			} else {
				checks["cache"] = "ok"
			}
		}

		status := "ready"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, httpStatus, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
