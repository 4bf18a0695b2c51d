package models

const (
	TableEntity            = "entity"
	TableProduct           = "product"
	TableCompanyProduct    = "company_product"
	TablePurchase          = "purchase"
	TableProductsPurchased = "products_purchased"
)

// All returns one zero value per mapped table, in foreign-key order.
func All() []any {
	return []any{
		&Entity{},
		&Product{},
		&CompanyProduct{},
		&Purchase{},
		&ProductsPurchased{},
	}
}
