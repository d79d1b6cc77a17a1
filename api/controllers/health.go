package controllers

import (
	"net/http"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/pkg/config"
	"github.com/glacierhockey/rinkreg-backend/pkg/db"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RinkReg-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RinkReg-Env", cfg.App.Env)

		checks := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true

		if dbP == nil {
			checks["db"] = "not configured"
			healthy = false
		} else if err := dbP.Ping(r.Context()); err != nil {
			checks["db"] = "unreachable"
			healthy = false
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "readiness db ping failed")
		}

		if cache == nil {
			checks["redis"] = "not configured"
			healthy = false
		} else if err := cache.Ping(r.Context()); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "readiness redis ping failed")
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
