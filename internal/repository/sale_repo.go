package repository

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	FindAll(ctx context.Context) ([]model.SalesMaster, error)
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.SalesMaster, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]model.SalesMaster, error)
	BillNoExists(tx *gorm.DB, billNo string) (bool, error)
	Create(tx *gorm.DB, master *model.SalesMaster) error
	UpdateMaster(tx *gorm.DB, master *model.SalesMaster) error
	SetInvoice(tx *gorm.DB, saleID uuid.UUID, invoiceID *uuid.UUID) error
	CreateLines(tx *gorm.DB, lines []model.SalesLine) error
	DeleteLines(tx *gorm.DB, masterID uuid.UUID) error
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func orderedSalesLines(db *gorm.DB) *gorm.DB {
	return db.Order("sr_no ASC")
}

func (r *saleRepo) FindAll(ctx context.Context) ([]model.SalesMaster, error) {
	var masters []model.SalesMaster
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedSalesLines).
		Preload("Lines.Product").
		Preload("Invoice").
		Order("created_at DESC").
		Find(&masters).Error
	return masters, err
}

func (r *saleRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.SalesMaster, error) {
	var master model.SalesMaster
	err := tx.Preload("Lines", orderedSalesLines).
		Preload("Lines.Product").
		Preload("Invoice").
		First(&master, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &master, nil
}

func (r *saleRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.SalesMaster, error) {
	var masters []model.SalesMaster
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedSalesLines).
		Preload("Lines.Product").
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&masters).Error
	return masters, err
}

func (r *saleRepo) BillNoExists(tx *gorm.DB, billNo string) (bool, error) {
	var count int64
	err := tx.Model(&model.SalesMaster{}).Where("bill_no = ?", billNo).Count(&count).Error
	return count > 0, err
}

func (r *saleRepo) Create(tx *gorm.DB, master *model.SalesMaster) error {
	return tx.Omit("Lines", "Invoice").Create(master).Error
}

func (r *saleRepo) UpdateMaster(tx *gorm.DB, master *model.SalesMaster) error {
	return tx.Model(master).
		Select("client_name", "date", "amount", "updated_by").
		Updates(master).Error
}

func (r *saleRepo) SetInvoice(tx *gorm.DB, saleID uuid.UUID, invoiceID *uuid.UUID) error {
	return tx.Model(&model.SalesMaster{}).Where("id = ?", saleID).Update("invoice_id", invoiceID).Error
}

func (r *saleRepo) CreateLines(tx *gorm.DB, lines []model.SalesLine) error {
	if len(lines) == 0 {
		return nil
	}
	return tx.Omit("Product").Create(&lines).Error
}

func (r *saleRepo) DeleteLines(tx *gorm.DB, masterID uuid.UUID) error {
	return tx.Where("sales_master_id = ?", masterID).Delete(&model.SalesLine{}).Error
}

func (r *saleRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.SalesMaster{}, "id = ?", id).Error
}
