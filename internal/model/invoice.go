package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPaid, PaymentPending, PaymentPartial:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank-transfer"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case MethodCash, MethodCard, MethodUPI, MethodBankTransfer:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceGenerated InvoiceStatus = "Generated"
	InvoicePaid      InvoiceStatus = "Paid"
	InvoicePending   InvoiceStatus = "Pending"
	InvoiceCancelled InvoiceStatus = "Cancelled"
)

// Invoice is the billing document of exactly one sale.
type Invoice struct {
	BaseModel
	InvoiceNumber string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"invoiceNumber"`
	SalesMasterID uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"sales_master"`
	Date          time.Time       `gorm:"not null" json:"date"`
	ClientName    string          `gorm:"type:varchar(255);not null" json:"client_name"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"gstRate"`
	GSTAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"gstAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Status        InvoiceStatus   `gorm:"type:varchar(16);not null" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(16);not null" json:"paymentStatus"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(16);not null" json:"paymentMethod"`

	CustomerEmail   string     `gorm:"type:varchar(255)" json:"customerEmail,omitempty"`
	CustomerPhone   string     `gorm:"type:varchar(32)" json:"customerPhone,omitempty"`
	CustomerAddress string     `gorm:"type:text" json:"customerAddress,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	Terms           string     `gorm:"type:text" json:"terms,omitempty"`

	Sale *SalesMaster `gorm:"foreignKey:SalesMasterID" json:"sale,omitempty"`
}

// StatusFor maps a payment status onto the coarse invoice status.
func StatusFor(p PaymentStatus) InvoiceStatus {
	if p == PaymentPaid {
		return InvoicePaid
	}
	return InvoicePending
}
