package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseItem struct {
	ProductID uuid.UUID       `json:"productId" validate:"uuid_required"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price" validate:"decimal_gte0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
}

type PurchaseRequest struct {
	Supplier     uuid.UUID      `json:"supplier" validate:"uuid_required"`
	SupplierName string         `json:"supplierName"`
	BillNo       string         `json:"billNo" validate:"required"`
	Date         string         `json:"date" validate:"required"`
	Items        []PurchaseItem `json:"items" validate:"required,min=1,dive"`
}

type PurchaseService interface {
	Create(ctx context.Context, actor Actor, req *PurchaseRequest) (*model.PurchaseMaster, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *PurchaseRequest) (*model.PurchaseMaster, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context) ([]model.PurchaseMaster, error)
	Get(ctx context.Context, id uuid.UUID) (*model.PurchaseMaster, error)
	SupplierBills(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseMaster, error)
	NextBillNo(ctx context.Context) (string, error)
}

type purchaseService struct {
	db           *gorm.DB
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	book         *StockBook
	sequences    SequenceService
	notifier     Notifier
	now          func() time.Time
}

func NewPurchaseService(
	db *gorm.DB,
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	book *StockBook,
	sequences SequenceService,
	notifier Notifier,
) PurchaseService {
	return &purchaseService{
		db:           db,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		book:         book,
		sequences:    sequences,
		notifier:     notifier,
		now:          time.Now,
	}
}

func purchaseKey(id uuid.UUID) string { return "purchase:" + id.String() }

func itemProducts(items []PurchaseItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func (s *purchaseService) Create(ctx context.Context, actor Actor, req *PurchaseRequest) (*model.PurchaseMaster, error) {
	req.BillNo = strings.TrimSpace(req.BillNo)
	if err := validate(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date, s.now)
	if err != nil {
		return nil, err
	}

	release, err := s.book.Lock(ctx, nil, func() ([]uuid.UUID, error) { return itemProducts(req.Items), nil })
	if err != nil {
		return nil, err
	}
	defer release()

	master := &model.PurchaseMaster{}
	master.CreatedBy = actor.ID
	var stock []ProductStock
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stock, err = s.apply(tx, actor, master, req, date, true)
		return err
	})
	if err != nil {
		return nil, integrity("purchase", "Create", req, err)
	}

	publish(s.notifier, actor, "purchase_created", master.ID, stock,
		"recorded purchase %s from %s", master.BillNo, master.SupplierName)
	return master, nil
}

// apply validates req against the store and writes master plus lines, receiving every line into stock.
func (s *purchaseService) apply(tx *gorm.DB, actor Actor, master *model.PurchaseMaster, req *PurchaseRequest, date time.Time, create bool) ([]ProductStock, error) {
	supplier, err := s.supplierRepo.FindByID(tx, req.Supplier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ValidationError{Field: "supplier", Message: "invalid supplier"}
	}
	if err != nil {
		return nil, err
	}

	taken, err := s.purchaseRepo.BillNoTakenByOther(tx, req.BillNo, supplier.ID, master.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Value: req.BillNo, Message: "bill number already exists for another supplier"}
	}

	products, err := s.productRepo.FindByIDs(tx, itemProducts(req.Items))
	if err != nil {
		return nil, err
	}

	lines := make([]model.PurchaseLine, 0, len(req.Items))
	total := decimal.Zero
	for i, it := range req.Items {
		product, ok := products[it.ProductID]
		if !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].productId", i), Message: "product not found"}
		}
		name := strings.TrimSpace(it.Name)
		if name == "" {
			name = product.Name
		}
		amount := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(amount)

		line := model.PurchaseLine{
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			Rate:        it.Price,
			Amount:      amount,
		}
		line.CreatedBy = actor.ID
		line.UpdatedBy = actor.ID
		lines = append(lines, line)
	}

	master.BillNo = req.BillNo
	master.Date = date
	master.SupplierID = supplier.ID
	master.SupplierName = strings.TrimSpace(req.SupplierName)
	if master.SupplierName == "" {
		master.SupplierName = supplier.Name
	}
	master.TotalAmount = total
	master.UpdatedBy = actor.ID

	if create {
		err = s.purchaseRepo.Create(tx, master)
	} else {
		err = s.purchaseRepo.UpdateMaster(tx, master)
	}
	if err != nil {
		return nil, err
	}

	for i := range lines {
		lines[i].PurchaseMasterID = master.ID
	}
	if err := s.purchaseRepo.CreateLines(tx, lines); err != nil {
		return nil, err
	}

	rows := map[uuid.UUID]*model.StockLedger{}
	names := map[uuid.UUID]string{}
	for _, line := range lines {
		row, err := s.book.Receive(tx, line.ProductID, line.Quantity, actor.ID)
		if err != nil {
			return nil, err
		}
		rows[line.ProductID] = row
		names[line.ProductID] = products[line.ProductID].Name
	}
	master.Lines = lines
	return closingOf(rows, names), nil
}

// revert undoes the stock effect of every existing line and removes the lines.
func (s *purchaseService) revert(tx *gorm.DB, actor Actor, master *model.PurchaseMaster) (map[uuid.UUID]*model.StockLedger, error) {
	rows := map[uuid.UUID]*model.StockLedger{}
	for _, line := range master.Lines {
		row, err := s.book.ReverseReceive(tx, line.ProductID, line.Quantity, actor.ID)
		if err != nil {
			return nil, err
		}
		rows[line.ProductID] = row
	}
	if err := s.purchaseRepo.DeleteLines(tx, master.ID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *purchaseService) lockExisting(ctx context.Context, id uuid.UUID, extra []uuid.UUID) (func(), error) {
	return s.book.Lock(ctx, []string{purchaseKey(id)}, func() ([]uuid.UUID, error) {
		master, err := s.purchaseRepo.FindByID(s.db.WithContext(ctx), id)
		if err != nil {
			return nil, lookup("purchase", id, err)
		}
		ids := append([]uuid.UUID{}, extra...)
		for _, line := range master.Lines {
			ids = append(ids, line.ProductID)
		}
		return ids, nil
	})
}

func (s *purchaseService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *PurchaseRequest) (*model.PurchaseMaster, error) {
	req.BillNo = strings.TrimSpace(req.BillNo)
	if err := validate(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date, s.now)
	if err != nil {
		return nil, err
	}

	release, err := s.lockExisting(ctx, id, itemProducts(req.Items))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		master *model.PurchaseMaster
		stock  []ProductStock
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.purchaseRepo.FindByID(tx, id)
		if err != nil {
			return lookup("purchase", id, err)
		}
		reverted, err := s.revert(tx, actor, existing)
		if err != nil {
			return err
		}
		master = existing
		master.Lines = nil
		applied, err := s.apply(tx, actor, master, req, date, false)
		if err != nil {
			return err
		}
		stock = mergeStock(reverted, applied)
		return nil
	})
	if err != nil {
		return nil, integrity("purchase", "Update", req, err)
	}

	publish(s.notifier, actor, "purchase_updated", master.ID, stock,
		"updated purchase %s from %s", master.BillNo, master.SupplierName)
	return master, nil
}

func (s *purchaseService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	release, err := s.lockExisting(ctx, id, nil)
	if err != nil {
		return err
	}
	defer release()

	var (
		billNo string
		stock  []ProductStock
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.purchaseRepo.FindByID(tx, id)
		if err != nil {
			return lookup("purchase", id, err)
		}
		billNo = existing.BillNo
		reverted, err := s.revert(tx, actor, existing)
		if err != nil {
			return err
		}
		stock = mergeStock(reverted, nil)
		return s.purchaseRepo.Delete(tx, id)
	})
	if err != nil {
		return integrity("purchase", "Delete", id, err)
	}

	publish(s.notifier, actor, "purchase_deleted", id, stock, "deleted purchase %s", billNo)
	return nil
}

func (s *purchaseService) List(ctx context.Context) ([]model.PurchaseMaster, error) {
	return s.purchaseRepo.FindAll(ctx)
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*model.PurchaseMaster, error) {
	master, err := s.purchaseRepo.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, lookup("purchase", id, err)
	}
	return master, nil
}

func (s *purchaseService) SupplierBills(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseMaster, error) {
	return s.purchaseRepo.FindBySupplier(ctx, supplierID)
}

func (s *purchaseService) NextBillNo(ctx context.Context) (string, error) {
	return s.sequences.Peek(ctx, PurchaseBillStream)
}
