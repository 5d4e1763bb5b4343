package model

import "gorm.io/gorm"

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Privilege{}, &Role{}, &User{},
		&Product{}, &StockLedger{},
		&Supplier{}, &Customer{},
		&PurchaseMaster{}, &PurchaseLine{},
		&Invoice{}, &SalesMaster{}, &SalesLine{},
		&Sequence{},
	)
}
