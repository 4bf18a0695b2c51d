package controllers

import (
	"net/http"

	"github.com/angelmondragon/carbon-ledger/api/responses"
	"github.com/angelmondragon/carbon-ledger/api/validators"
	"github.com/angelmondragon/carbon-ledger/internal/purchases"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
)

// PurchaseGet returns the purchase header with its line items.
func PurchaseGet(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "prch_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, purchase)
	}
}

type lineItemRequest struct {
	ProdID *int64 `json:"prod_id" validate:"required"`
	CompID *int64 `json:"comp_id"`
}

// purchaseAddRequest accepts and ignores prch_id; the id is always generated.
type purchaseAddRequest struct {
	PrchID     *int64            `json:"prch_id"`
	BuyrID     *int64            `json:"buyr_id" validate:"required"`
	SelrID     *int64            `json:"selr_id" validate:"required"`
	Price      *float64          `json:"price" validate:"required"`
	CarbonCost *float64          `json:"carbon_cost"`
	ItemList   []lineItemRequest `json:"item_list" validate:"omitempty,dive"`
}

type purchaseUpdateRequest struct {
	PrchID     *int64            `json:"prch_id" validate:"required"`
	BuyrID     *int64            `json:"buyr_id" validate:"required"`
	SelrID     *int64            `json:"selr_id" validate:"required"`
	Price      *float64          `json:"price" validate:"required"`
	CarbonCost *float64          `json:"carbon_cost"`
	ItemList   []lineItemRequest `json:"item_list" validate:"omitempty,dive"`
}

func toLineItems(items []lineItemRequest) []purchases.LineItemInput {
	out := make([]purchases.LineItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, purchases.LineItemInput{ProdID: *item.ProdID, CompID: item.CompID})
	}
	return out
}

// PurchaseAdd creates a purchase and its line items.
func PurchaseAdd(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		var payload purchaseAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Add(r.Context(), purchases.PurchaseInput{
			BuyrID:     *payload.BuyrID,
			SelrID:     *payload.SelrID,
			Price:      *payload.Price,
			CarbonCost: payload.CarbonCost,
			Items:      toLineItems(payload.ItemList),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"prch_id": id, "items": len(payload.ItemList)})
			logg.Info(ctx, "purchase.added")
		}
		responses.WriteStatus(w, map[string]int64{"prch_id": id})
	}
}

// PurchaseUpdate overwrites a purchase header and replaces its line items.
func PurchaseUpdate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		var payload purchaseUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Update(r.Context(), *payload.PrchID, purchases.PurchaseInput{
			BuyrID:     *payload.BuyrID,
			SelrID:     *payload.SelrID,
			Price:      *payload.Price,
			CarbonCost: payload.CarbonCost,
			Items:      toLineItems(payload.ItemList),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStatus(w, map[string]int64{"prch_id": id})
	}
}
