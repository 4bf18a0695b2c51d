package models

// Entity is a buyer or seller account tracked for cumulative carbon totals.
// Rows are seeded out of band and only read or updated by the API.
type Entity struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	DisplayName  string  `gorm:"column:display_name;not null"`
	CarbonOffset float64 `gorm:"column:carbon_offset;not null;default:0"`
	CarbonCost   float64 `gorm:"column:carbon_cost;not null;default:0"`
}

func (Entity) TableName() string { return TableEntity }
