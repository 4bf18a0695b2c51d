package controllers

import (
	"net/http"

	"github.com/angelmondragon/carbon-ledger/api/responses"
	"github.com/angelmondragon/carbon-ledger/api/validators"
	"github.com/angelmondragon/carbon-ledger/internal/entities"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
	"github.com/angelmondragon/carbon-ledger/pkg/types"
)

// EntityGet returns the entity row as a flat object.
func EntityGet(svc entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entity service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, entity)
	}
}

type entityUpdateRequest struct {
	ID           *int64   `json:"id" validate:"required"`
	CarbonOffset *float64 `json:"carbon_offset" validate:"required"`
	CarbonCost   *float64 `json:"carbon_cost" validate:"required"`
}

// EntityUpdate overwrites an entity's carbon totals.
func EntityUpdate(svc entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entity service unavailable"))
			return
		}

		var payload entityUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Update(r.Context(), entities.UpdateInput{
			ID:           *payload.ID,
			CarbonOffset: *payload.CarbonOffset,
			CarbonCost:   *payload.CarbonCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStatus(w, map[string]int64{"id": id})
	}
}

// EntityPurchases lists the purchases an entity made strictly between the
// start_ts and end_ts epoch-second query values.
func EntityPurchases(svc entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entity service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryEpoch(r, "start_ts")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryEpoch(r, "end_ts")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListPurchases(r.Context(), id, types.TimeFromEpoch(start), types.TimeFromEpoch(end))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, list)
	}
}
