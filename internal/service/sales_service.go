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

type SaleLineRequest struct {
	Product  uuid.UUID       `json:"product" validate:"uuid_required"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Rate     decimal.Decimal `json:"rate" validate:"decimal_gte0"`
}

type SaleRequest struct {
	BillNo     string            `json:"bill_no"`
	ClientName string            `json:"client_name" validate:"required"`
	Date       string            `json:"date"`
	Details    []SaleLineRequest `json:"details" validate:"required,min=1,dive"`
}

type SalesService interface {
	Create(ctx context.Context, actor Actor, req *SaleRequest) (*model.SalesMaster, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *SaleRequest) (*model.SalesMaster, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context) ([]model.SalesMaster, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SalesMaster, error)
}

type salesService struct {
	db          *gorm.DB
	saleRepo    repository.SaleRepository
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	book        *StockBook
	sequences   SequenceService
	notifier    Notifier
	now         func() time.Time
}

func NewSalesService(
	db *gorm.DB,
	saleRepo repository.SaleRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	book *StockBook,
	sequences SequenceService,
	notifier Notifier,
) SalesService {
	return &salesService{
		db:          db,
		saleRepo:    saleRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		book:        book,
		sequences:   sequences,
		notifier:    notifier,
		now:         time.Now,
	}
}

func saleKey(id uuid.UUID) string { return "sale:" + id.String() }

func lineProducts(lines []SaleLineRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.Product)
	}
	return ids
}

// checkSufficiency compares the total requested per product with the current closing stock.
func (s *salesService) checkSufficiency(tx *gorm.DB, lines []SaleLineRequest, products map[uuid.UUID]model.Product) error {
	required := map[uuid.UUID]int{}
	order := make([]uuid.UUID, 0, len(lines))
	for i, l := range lines {
		if _, ok := products[l.Product]; !ok {
			return &ValidationError{Field: fmt.Sprintf("details[%d].product", i), Message: "product not found"}
		}
		if _, ok := required[l.Product]; !ok {
			order = append(order, l.Product)
		}
		required[l.Product] += l.Quantity
	}
	for _, id := range order {
		available, err := s.book.Available(tx, id)
		if err != nil {
			return err
		}
		if available < required[id] {
			return &InsufficientStockError{Product: products[id].Name, Available: available, Required: required[id]}
		}
	}
	return nil
}

func (s *salesService) Create(ctx context.Context, actor Actor, req *SaleRequest) (*model.SalesMaster, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.BillNo = strings.TrimSpace(req.BillNo)
	if err := validate(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date, s.now)
	if err != nil {
		return nil, err
	}

	release, err := s.book.Lock(ctx, nil, func() ([]uuid.UUID, error) { return lineProducts(req.Details), nil })
	if err != nil {
		return nil, err
	}
	defer release()

	master := &model.SalesMaster{BillNo: req.BillNo}
	master.CreatedBy = actor.ID
	var stock []ProductStock
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.FindByIDs(tx, lineProducts(req.Details))
		if err != nil {
			return err
		}
		if err := s.checkSufficiency(tx, req.Details, products); err != nil {
			return err
		}

		if master.BillNo == "" {
			if master.BillNo, err = s.sequences.Next(tx, SalesBillStream); err != nil {
				return err
			}
		} else {
			taken, err := s.saleRepo.BillNoExists(tx, master.BillNo)
			if err != nil {
				return err
			}
			if taken {
				return &ConflictError{Value: master.BillNo, Message: "bill number already exists"}
			}
			if err := s.sequences.Observe(tx, SalesBillStream, master.BillNo); err != nil {
				return err
			}
		}
		stock, err = s.apply(tx, actor, master, req, date, products, true)
		return err
	})
	if err != nil {
		return nil, integrity("sales", "Create", req, err)
	}

	publish(s.notifier, actor, "sale_created", master.ID, stock,
		"recorded sale %s to %s", master.BillNo, master.ClientName)
	return master, nil
}

// apply writes master and lines in input order and issues every line from stock.
func (s *salesService) apply(tx *gorm.DB, actor Actor, master *model.SalesMaster, req *SaleRequest, date time.Time, products map[uuid.UUID]model.Product, create bool) ([]ProductStock, error) {
	lines := make([]model.SalesLine, 0, len(req.Details))
	total := decimal.Zero
	for i, d := range req.Details {
		amount := d.Rate.Mul(decimal.NewFromInt(int64(d.Quantity)))
		total = total.Add(amount)
		line := model.SalesLine{
			SrNo:      i + 1,
			ProductID: d.Product,
			Quantity:  d.Quantity,
			Rate:      d.Rate,
			Amount:    amount,
		}
		line.CreatedBy = actor.ID
		line.UpdatedBy = actor.ID
		lines = append(lines, line)
	}

	master.ClientName = req.ClientName
	master.Date = date
	master.Amount = total
	master.UpdatedBy = actor.ID

	var err error
	if create {
		err = s.saleRepo.Create(tx, master)
	} else {
		err = s.saleRepo.UpdateMaster(tx, master)
	}
	if err != nil {
		return nil, err
	}

	for i := range lines {
		lines[i].SalesMasterID = master.ID
	}
	if err := s.saleRepo.CreateLines(tx, lines); err != nil {
		return nil, err
	}

	rows := map[uuid.UUID]*model.StockLedger{}
	names := map[uuid.UUID]string{}
	for _, line := range lines {
		row, err := s.book.Issue(tx, line.ProductID, line.Quantity, actor.ID)
		if err != nil {
			return nil, err
		}
		rows[line.ProductID] = row
		names[line.ProductID] = products[line.ProductID].Name
	}
	master.Lines = lines
	return closingOf(rows, names), nil
}

func (s *salesService) revert(tx *gorm.DB, actor Actor, master *model.SalesMaster) (map[uuid.UUID]*model.StockLedger, error) {
	rows := map[uuid.UUID]*model.StockLedger{}
	for _, line := range master.Lines {
		row, err := s.book.ReverseIssue(tx, line.ProductID, line.Quantity, actor.ID)
		if err != nil {
			return nil, err
		}
		rows[line.ProductID] = row
	}
	if err := s.saleRepo.DeleteLines(tx, master.ID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *salesService) lockExisting(ctx context.Context, id uuid.UUID, extra []uuid.UUID) (func(), error) {
	return s.book.Lock(ctx, []string{saleKey(id)}, func() ([]uuid.UUID, error) {
		master, err := s.saleRepo.FindByID(s.db.WithContext(ctx), id)
		if err != nil {
			return nil, lookup("sale", id, err)
		}
		ids := append([]uuid.UUID{}, extra...)
		for _, line := range master.Lines {
			ids = append(ids, line.ProductID)
		}
		return ids, nil
	})
}

// Update reverses the existing lines first so the new set is checked against a clean baseline.
// The bill number is kept.
func (s *salesService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *SaleRequest) (*model.SalesMaster, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.BillNo = ""
	if err := validate(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date, s.now)
	if err != nil {
		return nil, err
	}

	release, err := s.lockExisting(ctx, id, lineProducts(req.Details))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		master *model.SalesMaster
		stock  []ProductStock
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.saleRepo.FindByID(tx, id)
		if err != nil {
			return lookup("sale", id, err)
		}
		reverted, err := s.revert(tx, actor, existing)
		if err != nil {
			return err
		}

		products, err := s.productRepo.FindByIDs(tx, lineProducts(req.Details))
		if err != nil {
			return err
		}
		if err := s.checkSufficiency(tx, req.Details, products); err != nil {
			return err
		}

		master = existing
		master.Lines = nil
		applied, err := s.apply(tx, actor, master, req, date, products, false)
		if err != nil {
			return err
		}
		stock = mergeStock(reverted, applied)
		return nil
	})
	if err != nil {
		return nil, integrity("sales", "Update", req, err)
	}

	publish(s.notifier, actor, "sale_updated", master.ID, stock,
		"updated sale %s to %s", master.BillNo, master.ClientName)
	return master, nil
}

// Delete restores stock for every line and removes the sale together with its invoice, if any.
func (s *salesService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
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
		existing, err := s.saleRepo.FindByID(tx, id)
		if err != nil {
			return lookup("sale", id, err)
		}
		billNo = existing.BillNo

		reverted, err := s.revert(tx, actor, existing)
		if err != nil {
			return err
		}
		stock = mergeStock(reverted, nil)

		invoice, err := s.invoiceRepo.FindBySale(tx, id)
		if err == nil {
			if err := s.invoiceRepo.Delete(tx, invoice.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.saleRepo.Delete(tx, id)
	})
	if err != nil {
		return integrity("sales", "Delete", id, err)
	}

	publish(s.notifier, actor, "sale_deleted", id, stock, "deleted sale %s", billNo)
	return nil
}

func (s *salesService) List(ctx context.Context) ([]model.SalesMaster, error) {
	return s.saleRepo.FindAll(ctx)
}

func (s *salesService) Get(ctx context.Context, id uuid.UUID) (*model.SalesMaster, error) {
	master, err := s.saleRepo.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, lookup("sale", id, err)
	}
	return master, nil
}
