package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	// Stock mirrors StockLedger.ClosingStock; both move in the same transaction.
	Stock int `gorm:"not null;default:0" json:"stock"`

	Ledger *StockLedger `gorm:"foreignKey:ProductID" json:"ledger,omitempty"`
}
