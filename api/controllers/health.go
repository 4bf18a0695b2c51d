package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/carbon-ledger/api/responses"
	"github.com/angelmondragon/carbon-ledger/pkg/config"
	"github.com/angelmondragon/carbon-ledger/pkg/db"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
)

const envHeader = "X-Carbon-Env"

// ReadinessCheck is one dependency checked by HealthReady.
type ReadinessCheck struct {
	Name string
	Ping func(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteJSON(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check and lists the tables loaded at startup.
func HealthReady(cfg *config.Config, schema *db.Schema, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for _, check := range checks {
			if check.Ping == nil {
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable"))
				return
			}
		}
		tables := schema.Tables()
		if tables == nil {
			tables = []string{}
		}
		responses.WriteJSON(w, map[string]any{"status": "ready", "tables": tables})
	}
}
