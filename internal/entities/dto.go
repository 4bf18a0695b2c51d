package entities

import (
	"github.com/angelmondragon/carbon-ledger/internal/purchases"
	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
)

// EntityDTO is the public shape of an entity row.
type EntityDTO struct {
	ID           int64   `json:"id"`
	DisplayName  string  `json:"display_name"`
	CarbonOffset float64 `json:"carbon_offset"`
	CarbonCost   float64 `json:"carbon_cost"`
}

// PurchaseListDTO lists the purchases an entity made within a time window.
type PurchaseListDTO struct {
	UserID       int64                 `json:"user_id"`
	PurchaseList []purchases.HeaderDTO `json:"purchase_list"`
}

func NewEntityDTO(e models.Entity) *EntityDTO {
	return &EntityDTO{
		ID:           e.ID,
		DisplayName:  e.DisplayName,
		CarbonOffset: e.CarbonOffset,
		CarbonCost:   e.CarbonCost,
	}
}

func NewPurchaseListDTO(userID int64, rows []models.Purchase) *PurchaseListDTO {
	list := make([]purchases.HeaderDTO, 0, len(rows))
	for _, row := range rows {
		list = append(list, purchases.NewHeaderDTO(row))
	}
	return &PurchaseListDTO{UserID: userID, PurchaseList: list}
}
