package controllers

import (
	"context"
	"net/http"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/pkg/config"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BillStack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every wired dependency answers a
// ping. A nil redis pinger is skipped so dev setups without redis stay green.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP pinger, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BillStack-Env", cfg.App.Env)

		failures := map[string]string{}
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				failures["database"] = err.Error()
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				failures["redis"] = err.Error()
			}
		}

		if len(failures) > 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failures))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
