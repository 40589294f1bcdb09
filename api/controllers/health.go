package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/responses"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/config"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency readiness can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pargne-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis; nil dependencies are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger, redisPinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pargne-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var errs error
		failed := map[string]string{}
		for name, pinger := range map[string]Pinger{"database": dbPinger, "redis": redisPinger} {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				failed[name] = err.Error()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
		if errs != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable").WithDetails(failed)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
