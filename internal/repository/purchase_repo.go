package repository

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	FindAll(ctx context.Context) ([]model.PurchaseMaster, error)
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseMaster, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseMaster, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]model.PurchaseMaster, error)
	// BillNoTakenByOther reports whether billNo is already used by a supplier other than supplierID.
	// The master self (uuid.Nil on create) is not counted.
	BillNoTakenByOther(tx *gorm.DB, billNo string, supplierID, self uuid.UUID) (bool, error)
	Create(tx *gorm.DB, master *model.PurchaseMaster) error
	UpdateMaster(tx *gorm.DB, master *model.PurchaseMaster) error
	CreateLines(tx *gorm.DB, lines []model.PurchaseLine) error
	DeleteLines(tx *gorm.DB, masterID uuid.UUID) error
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func orderedPurchaseLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (r *purchaseRepo) FindAll(ctx context.Context) ([]model.PurchaseMaster, error) {
	var masters []model.PurchaseMaster
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedPurchaseLines).
		Order("created_at DESC").
		Find(&masters).Error
	return masters, err
}

func (r *purchaseRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseMaster, error) {
	var master model.PurchaseMaster
	err := tx.Preload("Lines", orderedPurchaseLines).First(&master, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &master, nil
}

func (r *purchaseRepo) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseMaster, error) {
	var masters []model.PurchaseMaster
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("date DESC").
		Find(&masters).Error
	return masters, err
}

func (r *purchaseRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.PurchaseMaster, error) {
	var masters []model.PurchaseMaster
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedPurchaseLines).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&masters).Error
	return masters, err
}

func (r *purchaseRepo) BillNoTakenByOther(tx *gorm.DB, billNo string, supplierID, self uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&model.PurchaseMaster{}).
		Where("bill_no = ? AND supplier_id <> ? AND id <> ?", billNo, supplierID, self).
		Count(&count).Error
	return count > 0, err
}

func (r *purchaseRepo) Create(tx *gorm.DB, master *model.PurchaseMaster) error {
	return tx.Omit("Lines", "Supplier").Create(master).Error
}

func (r *purchaseRepo) UpdateMaster(tx *gorm.DB, master *model.PurchaseMaster) error {
	return tx.Model(master).
		Select("bill_no", "date", "supplier_id", "supplier_name", "total_amount", "updated_by").
		Updates(master).Error
}

func (r *purchaseRepo) CreateLines(tx *gorm.DB, lines []model.PurchaseLine) error {
	if len(lines) == 0 {
		return nil
	}
	return tx.Omit("Product").Create(&lines).Error
}

func (r *purchaseRepo) DeleteLines(tx *gorm.DB, masterID uuid.UUID) error {
	return tx.Where("purchase_master_id = ?", masterID).Delete(&model.PurchaseLine{}).Error
}

func (r *purchaseRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.PurchaseMaster{}, "id = ?", id).Error
}
