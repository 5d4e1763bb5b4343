package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SalesMaster struct {
	BaseModel
	BillNo     string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"bill_no"`
	ClientName string          `gorm:"type:varchar(255);not null" json:"client_name"`
	Date       time.Time       `gorm:"not null" json:"date"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	InvoiceID  *uuid.UUID      `gorm:"type:uuid" json:"invoice_id,omitempty"`

	Lines   []SalesLine `gorm:"foreignKey:SalesMasterID" json:"details,omitempty"`
	Invoice *Invoice    `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

type SalesLine struct {
	BaseModel
	SalesMasterID uuid.UUID       `gorm:"type:uuid;index;not null" json:"sales_master"`
	SrNo          int             `gorm:"not null" json:"sr_no"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"product"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Rate          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product_detail,omitempty"`
}

// LineTotal prefers the stored amount and falls back to quantity*rate.
func (l SalesLine) LineTotal() decimal.Decimal {
	if !l.Amount.IsZero() {
		return l.Amount
	}
	return l.Rate.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
