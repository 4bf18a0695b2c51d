package models

import "time"

// Purchase is a transaction header between a buyer and a seller entity.
type Purchase struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BuyrID     int64     `gorm:"column:buyr_id;not null;index:purchase_buyr_id_ts_idx,priority:1"`
	SelrID     int64     `gorm:"column:selr_id;not null"`
	Price      float64   `gorm:"column:price;not null"`
	CarbonCost *float64  `gorm:"column:carbon_cost"`
	Ts         time.Time `gorm:"column:ts;not null;index:purchase_buyr_id_ts_idx,priority:2"`
}

func (Purchase) TableName() string { return TablePurchase }
