package models

// ProductsPurchased is one line item of a purchase. The table has no key;
// a purchase's rows are replaced wholesale rather than edited.
type ProductsPurchased struct {
	PrchID int64  `gorm:"column:prch_id;not null;index:products_purchased_prch_id_idx"`
	ProdID int64  `gorm:"column:prod_id;not null"`
	CompID *int64 `gorm:"column:comp_id"`
}

func (ProductsPurchased) TableName() string { return TableProductsPurchased }
