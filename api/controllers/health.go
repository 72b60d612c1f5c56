package controllers

import (
	"net/http"

	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/db"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
	"github.com/matjara-app/matjara-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Matjara-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the critical dependencies before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Matjara-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			checks["db"] = "ok"
			if err := dbP.Ping(r.Context()); err != nil {
				checks["db"] = "unreachable"
				healthy = false
			}
		}
		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
