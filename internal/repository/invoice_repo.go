package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	FindAll(ctx context.Context) ([]model.Invoice, error)
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	FindBySale(tx *gorm.DB, saleID uuid.UUID) (*model.Invoice, error)
	Create(tx *gorm.DB, invoice *model.Invoice) error
	UpdatePayment(tx *gorm.DB, invoice *model.Invoice) error
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type invoiceRepo struct {
	db *gorm.DB
}

func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db}
}

func (r *invoiceRepo) FindAll(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).Preload("Sale").Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := tx.Preload("Sale").
		Preload("Sale.Lines", orderedSalesLines).
		Preload("Sale.Lines.Product").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) FindBySale(tx *gorm.DB, saleID uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := tx.Where("sales_master_id = ?", saleID).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) Create(tx *gorm.DB, invoice *model.Invoice) error {
	return tx.Omit("Sale").Create(invoice).Error
}

func (r *invoiceRepo) UpdatePayment(tx *gorm.DB, invoice *model.Invoice) error {
	return tx.Model(invoice).
		Select("payment_status", "status", "updated_by").
		Updates(invoice).Error
}

func (r *invoiceRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Invoice{}, "id = ?", id).Error
}
