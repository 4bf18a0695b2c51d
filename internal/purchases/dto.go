package purchases

import (
	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	"github.com/angelmondragon/carbon-ledger/pkg/types"
)

// HeaderDTO is a purchase row with its timestamp in epoch seconds.
type HeaderDTO struct {
	ID         int64    `json:"id"`
	BuyrID     int64    `json:"buyr_id"`
	SelrID     int64    `json:"selr_id"`
	Price      float64  `json:"price"`
	CarbonCost *float64 `json:"carbon_cost"`
	Ts         float64  `json:"ts"`
}

// LineItemDTO is one products_purchased row.
type LineItemDTO struct {
	PrchID int64  `json:"prch_id"`
	ProdID int64  `json:"prod_id"`
	CompID *int64 `json:"comp_id"`
}

// PurchaseDTO is the header with its line items attached.
type PurchaseDTO struct {
	HeaderDTO
	ItemList []LineItemDTO `json:"item_list"`
}

func NewHeaderDTO(p models.Purchase) HeaderDTO {
	return HeaderDTO{
		ID:         p.ID,
		BuyrID:     p.BuyrID,
		SelrID:     p.SelrID,
		Price:      p.Price,
		CarbonCost: p.CarbonCost,
		Ts:         types.EpochFromTime(p.Ts),
	}
}

func NewPurchaseDTO(p models.Purchase, items []models.ProductsPurchased) *PurchaseDTO {
	dto := &PurchaseDTO{
		HeaderDTO: NewHeaderDTO(p),
		ItemList:  make([]LineItemDTO, 0, len(items)),
	}
	for _, item := range items {
		dto.ItemList = append(dto.ItemList, LineItemDTO{
			PrchID: item.PrchID,
			ProdID: item.ProdID,
			CompID: item.CompID,
		})
	}
	return dto
}
