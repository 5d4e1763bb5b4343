package repository

import (
	"context"
	"strings"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindByIDs(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)
	FindByNameFold(tx *gorm.DB, name string) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	AdjustStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) error
	SetStock(tx *gorm.DB, id uuid.UUID, stock int, updatedBy string) error
	CountLineReferences(tx *gorm.DB, id uuid.UUID) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

// FindAll returns products newest first with their ledger rows attached.
func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Ledger").Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	var products []model.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// FindByNameFold matches name case-insensitively.
func (r *productRepo) FindByNameFold(tx *gorm.DB, name string) (*model.Product, error) {
	var product model.Product
	err := tx.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return tx.Model(product).Select("name", "description", "price", "stock", "updated_by").Updates(product).Error
}

func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}

// AdjustStock increments the denormalized counter in place; a missing product is gorm.ErrRecordNotFound.
func (r *productRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) SetStock(tx *gorm.DB, id uuid.UUID, stock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      stock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) CountLineReferences(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var purchases, sales int64
	if err := tx.Model(&model.PurchaseLine{}).Where("product_id = ?", id).Count(&purchases).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&model.SalesLine{}).Where("product_id = ?", id).Count(&sales).Error; err != nil {
		return 0, err
	}
	return purchases + sales, nil
}
