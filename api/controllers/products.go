package controllers

import (
	"net/http"

	"github.com/angelmondragon/carbon-ledger/api/responses"
	"github.com/angelmondragon/carbon-ledger/api/validators"
	"github.com/angelmondragon/carbon-ledger/internal/products"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
)

// ProductGet returns the effective carbon cost of prod_id for comp_id.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		compID, err := validators.ParsePathID(r, "comp_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		prodID, err := validators.ParsePathID(r, "prod_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cost, err := svc.Get(r.Context(), compID, prodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, cost)
	}
}

// ProductGetBase returns the product row itself.
func ProductGetBase(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		prodID, err := validators.ParsePathID(r, "prod_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetBase(r.Context(), prodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, product)
	}
}

type productAddRequest struct {
	CompID     *int64   `json:"comp_id" validate:"required"`
	ProdID     *int64   `json:"prod_id" validate:"required"`
	CarbonCost *float64 `json:"carbon_cost" validate:"required"`
}

// ProductAdd inserts a company-specific carbon cost override.
func ProductAdd(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Add(r.Context(), products.AddInput{
			CompID:     *payload.CompID,
			ProdID:     *payload.ProdID,
			CarbonCost: *payload.CarbonCost,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStatus(w, nil)
	}
}

type productUpdateRequest struct {
	CompID     *int64   `json:"comp_id"`
	ProdID     *int64   `json:"prod_id"`
	CarbonCost *float64 `json:"carbon_cost" validate:"required"`
}

// ProductUpdate writes carbon_cost on the entity, product or company_product
// row picked by which of comp_id and prod_id are present.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := products.NewCostUpdate(payload.CompID, payload.ProdID, *payload.CarbonCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateCost(r.Context(), update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStatus(w, nil)
	}
}
