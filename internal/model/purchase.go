package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseMaster is one supplier bill. BillNo may repeat for the same supplier
// (multi-shipment bills) but never across suppliers.
type PurchaseMaster struct {
	BaseModel
	BillNo       string          `gorm:"type:varchar(64);index;not null" json:"billNo"`
	Date         time.Time       `gorm:"not null" json:"date"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"supplier"`
	SupplierName string          `gorm:"type:varchar(255);not null" json:"supplierName"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"totalAmount"`

	Supplier *Supplier      `gorm:"foreignKey:SupplierID" json:"-"`
	Lines    []PurchaseLine `gorm:"foreignKey:PurchaseMasterID" json:"details,omitempty"`
}

type PurchaseLine struct {
	BaseModel
	PurchaseMasterID uuid.UUID       `gorm:"type:uuid;index;not null" json:"purchaseMaster"`
	ProductID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"product"`
	ProductName      string          `gorm:"type:varchar(255);not null" json:"productName"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	Rate             decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}
