package models

// Product is a catalog item carrying the company-independent base cost.
type Product struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement"`
	ItemName   string  `gorm:"column:item_name;not null"`
	CarbonCost float64 `gorm:"column:carbon_cost;not null;default:0"`
}

func (Product) TableName() string { return TableProduct }
