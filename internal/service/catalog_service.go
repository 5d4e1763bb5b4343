package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" validate:"decimal_gte0"`
	InitialStock int             `json:"initialStock" validate:"gte=0"`
}

// UpdateProductRequest changes only the fields that are present. A present Stock is a manual correction.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

// StockMismatch is a product whose counter and ledger disagree.
type StockMismatch struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	ProductStock int       `json:"product_stock"`
	ClosingStock int       `json:"closing_stock"`
	Consistent   bool      `json:"ledger_consistent"`
}

type CatalogService interface {
	CreateProduct(ctx context.Context, actor Actor, req *CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetStock(ctx context.Context) ([]model.StockLedger, error)
	Available(ctx context.Context, productID uuid.UUID) (int, error)
	Mismatches(ctx context.Context) ([]StockMismatch, error)
	Reconcile(ctx context.Context, actor Actor) ([]StockMismatch, error)
}

type catalogService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	book        *StockBook
	notifier    Notifier
}

func NewCatalogService(db *gorm.DB, pRepo repository.ProductRepository, sRepo repository.StockRepository, book *StockBook, notifier Notifier) CatalogService {
	return &catalogService{
		db:          db,
		productRepo: pRepo,
		stockRepo:   sRepo,
		book:        book,
		notifier:    notifier,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, actor Actor, req *CreateProductRequest) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.InitialStock,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNameFree(tx, product.Name, uuid.Nil); err != nil {
			return err
		}
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		ledger := &model.StockLedger{ProductID: product.ID, OpeningStock: req.InitialStock}
		ledger.SetClosing(req.InitialStock)
		ledger.CreatedBy = actor.ID
		ledger.UpdatedBy = actor.ID
		if err := s.stockRepo.Create(tx, ledger); err != nil {
			return err
		}
		product.Ledger = ledger
		return nil
	})
	if err != nil {
		return nil, integrity("catalog", "CreateProduct", req, err)
	}

	publish(s.notifier, actor, "product_created", product.ID,
		[]ProductStock{{ID: product.ID, Name: product.Name, Stock: product.Stock}},
		"created product '%s'", product.Name)
	return product, nil
}

func (s *catalogService) ensureNameFree(tx *gorm.DB, name string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByNameFold(tx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return &ConflictError{Value: name, Message: "product name already exists"}
	}
	return nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, &ValidationError{Field: "name", Message: "must not be empty"}
		}
		req.Name = &trimmed
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "must be >= 0"}
	}

	release, err := s.book.Lock(ctx, nil, func() ([]uuid.UUID, error) { return []uuid.UUID{id}, nil })
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindByID(tx, id)
		if err != nil {
			return lookup("product", id, err)
		}

		if req.Name != nil && *req.Name != existing.Name {
			if err := s.ensureNameFree(tx, *req.Name, existing.ID); err != nil {
				return err
			}
			existing.Name = *req.Name
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		existing.UpdatedBy = actor.ID

		if req.Stock != nil {
			ledger, err := s.book.SetClosing(tx, id, *req.Stock, actor.ID)
			if err != nil {
				return err
			}
			existing.Stock = ledger.ClosingStock
			existing.Ledger = ledger
		}

		if err := s.productRepo.Update(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, integrity("catalog", "UpdateProduct", req, err)
	}

	publish(s.notifier, actor, "product_updated", updated.ID,
		[]ProductStock{{ID: updated.ID, Name: updated.Name, Stock: updated.Stock}},
		"updated product '%s'", updated.Name)
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	release, err := s.book.Lock(ctx, nil, func() ([]uuid.UUID, error) { return []uuid.UUID{id}, nil })
	if err != nil {
		return err
	}
	defer release()

	var name string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByID(tx, id)
		if err != nil {
			return lookup("product", id, err)
		}
		name = product.Name

		refs, err := s.productRepo.CountLineReferences(tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return &ConflictError{Value: product.Name, Message: "product is referenced by purchase or sales lines"}
		}

		if err := s.stockRepo.DeleteByProduct(tx, id); err != nil {
			return err
		}
		return s.productRepo.Delete(tx, id)
	})
	if err != nil {
		return integrity("catalog", "DeleteProduct", id, err)
	}

	publish(s.notifier, actor, "product_deleted", id, nil, "deleted product '%s'", name)
	return nil
}

// GetAllProducts projects each product's stock from its ledger row when one exists.
func (s *catalogService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Ledger != nil {
			products[i].Stock = products[i].Ledger.ClosingStock
		}
	}
	return products, nil
}

func (s *catalogService) GetStock(ctx context.Context) ([]model.StockLedger, error) {
	return s.stockRepo.FindAll(ctx)
}

func (s *catalogService) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	row, err := s.stockRepo.FindByProduct(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.ClosingStock, nil
}

func (s *catalogService) Mismatches(ctx context.Context) ([]StockMismatch, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []StockMismatch{}
	for _, p := range products {
		m := StockMismatch{ProductID: p.ID, Name: p.Name, ProductStock: p.Stock, Consistent: true}
		if p.Ledger != nil {
			m.ClosingStock = p.Ledger.ClosingStock
			m.Consistent = p.Ledger.Consistent()
		}
		if m.ProductStock != m.ClosingStock || !m.Consistent {
			out = append(out, m)
		}
	}
	return out, nil
}

// Reconcile recomputes every drifted ledger row and copies its closing stock onto the product.
func (s *catalogService) Reconcile(ctx context.Context, actor Actor) ([]StockMismatch, error) {
	drift, err := s.Mismatches(ctx)
	if err != nil || len(drift) == 0 {
		return drift, err
	}

	ids := make([]uuid.UUID, 0, len(drift))
	for _, m := range drift {
		ids = append(ids, m.ProductID)
	}
	release, err := s.book.Lock(ctx, nil, func() ([]uuid.UUID, error) { return ids, nil })
	if err != nil {
		return nil, err
	}
	defer release()

	fixed := make([]ProductStock, 0, len(drift))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range drift {
			row, err := s.book.Ensure(tx, m.ProductID, actor.ID)
			if err != nil {
				return err
			}
			row.Recompute()
			row.UpdatedBy = actor.ID
			if err := s.stockRepo.Save(tx, row); err != nil {
				return err
			}
			if err := s.productRepo.SetStock(tx, m.ProductID, row.ClosingStock, actor.ID); err != nil {
				return err
			}
			fixed = append(fixed, ProductStock{ID: m.ProductID, Name: m.Name, Stock: row.ClosingStock})
		}
		return nil
	})
	if err != nil {
		return nil, integrity("catalog", "Reconcile", drift, err)
	}

	publish(s.notifier, actor, "stock_reconciled", uuid.Nil, fixed, "reconciled %d products", len(fixed))
	return drift, nil
}
