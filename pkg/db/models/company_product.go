package models

// CompanyProduct overrides a product's carbon cost for one company. The pair
// (comp_id, prod_id) is the primary key.
type CompanyProduct struct {
	CompID     int64   `gorm:"column:comp_id;primaryKey;autoIncrement:false"`
	ProdID     int64   `gorm:"column:prod_id;primaryKey;autoIncrement:false"`
	CarbonCost float64 `gorm:"column:carbon_cost;not null;default:0"`
}

func (CompanyProduct) TableName() string { return TableCompanyProduct }
