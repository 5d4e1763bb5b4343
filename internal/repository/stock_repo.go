package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	FindAll(ctx context.Context) ([]model.StockLedger, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) (*model.StockLedger, error)
	// LockByProduct reads the row FOR UPDATE; call inside a transaction.
	LockByProduct(tx *gorm.DB, productID uuid.UUID) (*model.StockLedger, error)
	Create(tx *gorm.DB, ledger *model.StockLedger) error
	Save(tx *gorm.DB, ledger *model.StockLedger) error
	DeleteByProduct(tx *gorm.DB, productID uuid.UUID) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) FindAll(ctx context.Context) ([]model.StockLedger, error) {
	var rows []model.StockLedger
	err := r.db.WithContext(ctx).Preload("Product").Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *stockRepo) FindByProduct(ctx context.Context, productID uuid.UUID) (*model.StockLedger, error) {
	var row model.StockLedger
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *stockRepo) LockByProduct(tx *gorm.DB, productID uuid.UUID) (*model.StockLedger, error) {
	var row model.StockLedger
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *stockRepo) Create(tx *gorm.DB, ledger *model.StockLedger) error {
	return tx.Create(ledger).Error
}

func (r *stockRepo) Save(tx *gorm.DB, ledger *model.StockLedger) error {
	return tx.Model(ledger).
		Select("opening_stock", "inward", "outward", "closing_stock", "updated_by").
		Updates(ledger).Error
}

func (r *stockRepo) DeleteByProduct(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Where("product_id = ?", productID).Delete(&model.StockLedger{}).Error
}
