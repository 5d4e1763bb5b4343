package service

import (
	"context"
	"errors"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/lock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GenerateInvoiceRequest struct {
	PaymentStatus   model.PaymentStatus `json:"paymentStatus"`
	PaymentMethod   model.PaymentMethod `json:"paymentMethod"`
	Discount        decimal.Decimal     `json:"discount" validate:"decimal_gte0"`
	CustomerEmail   string              `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string              `json:"customerPhone"`
	CustomerAddress string              `json:"customerAddress"`
	DueDate         string              `json:"dueDate"`
	Notes           string              `json:"notes"`
	Terms           string              `json:"terms"`
}

type InvoiceService interface {
	Generate(ctx context.Context, actor Actor, saleID uuid.UUID, req *GenerateInvoiceRequest) (*model.Invoice, error)
	UpdatePaymentStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.PaymentStatus) (*model.Invoice, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context) ([]model.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
}

type invoiceService struct {
	db          *gorm.DB
	invoiceRepo repository.InvoiceRepository
	saleRepo    repository.SaleRepository
	sequences   SequenceService
	locker      lock.Locker
	gstRate     decimal.Decimal
	now         func() time.Time
}

func NewInvoiceService(
	db *gorm.DB,
	invoiceRepo repository.InvoiceRepository,
	saleRepo repository.SaleRepository,
	sequences SequenceService,
	locker lock.Locker,
	gstRate decimal.Decimal,
) InvoiceService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &invoiceService{
		db:          db,
		invoiceRepo: invoiceRepo,
		saleRepo:    saleRepo,
		sequences:   sequences,
		locker:      locker,
		gstRate:     gstRate,
		now:         time.Now,
	}
}

var hundred = decimal.NewFromInt(100)

// Totals computes subtotal from the sale lines, GST at rate percent (2 places), and the payable total.
func Totals(lines []model.SalesLine, rate, discount decimal.Decimal) (subtotal, gst, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	gst = subtotal.Mul(rate).Div(hundred).Round(2)
	total = subtotal.Add(gst).Sub(discount)
	return subtotal, gst, total
}

func (s *invoiceService) Generate(ctx context.Context, actor Actor, saleID uuid.UUID, req *GenerateInvoiceRequest) (*model.Invoice, error) {
	if req == nil {
		req = &GenerateInvoiceRequest{}
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = model.PaymentPending
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.MethodCash
	}
	if !req.PaymentStatus.Valid() {
		return nil, &ValidationError{Field: "paymentStatus", Message: "must be paid, pending or partial"}
	}
	if !req.PaymentMethod.Valid() {
		return nil, &ValidationError{Field: "paymentMethod", Message: "must be cash, card, upi or bank-transfer"}
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := parseDate("dueDate", req.DueDate, s.now)
		if err != nil {
			return nil, err
		}
		dueDate = &d
	}

	release, err := s.locker.Acquire(ctx, saleKey(saleID))
	if err != nil {
		return nil, err
	}
	defer release()

	invoice := &model.Invoice{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.saleRepo.FindByID(tx, saleID)
		if err != nil {
			return lookup("sale", saleID, err)
		}
		if _, err := s.invoiceRepo.FindBySale(tx, saleID); err == nil {
			return &ConflictError{Value: sale.BillNo, Message: "invoice already exists for this sale"}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		subtotal, gst, total := Totals(sale.Lines, s.gstRate, req.Discount)
		if total.IsNegative() {
			return &ValidationError{Field: "discount", Message: "exceeds the invoice total"}
		}

		number, err := s.sequences.Next(tx, InvoiceStream)
		if err != nil {
			return err
		}

		*invoice = model.Invoice{
			InvoiceNumber:   number,
			SalesMasterID:   sale.ID,
			Date:            sale.Date,
			ClientName:      sale.ClientName,
			Subtotal:        subtotal,
			GSTRate:         s.gstRate,
			GSTAmount:       gst,
			Discount:        req.Discount,
			TotalAmount:     total,
			Status:          model.InvoiceGenerated,
			PaymentStatus:   req.PaymentStatus,
			PaymentMethod:   req.PaymentMethod,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			DueDate:         dueDate,
			Notes:           req.Notes,
			Terms:           req.Terms,
		}
		invoice.CreatedBy = actor.ID
		invoice.UpdatedBy = actor.ID
		if err := s.invoiceRepo.Create(tx, invoice); err != nil {
			return err
		}
		return s.saleRepo.SetInvoice(tx, sale.ID, &invoice.ID)
	})
	if err != nil {
		return nil, integrity("invoice", "Generate", saleID, err)
	}
	return invoice, nil
}

// UpdatePaymentStatus also moves the coarse status: Paid for "paid", Pending otherwise.
func (s *invoiceService) UpdatePaymentStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.PaymentStatus) (*model.Invoice, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "paymentStatus", Message: "must be paid, pending or partial"}
	}

	var invoice *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = s.invoiceRepo.FindByID(tx, id)
		if err != nil {
			return lookup("invoice", id, err)
		}
		invoice.PaymentStatus = status
		invoice.Status = model.StatusFor(status)
		invoice.UpdatedBy = actor.ID
		return s.invoiceRepo.UpdatePayment(tx, invoice)
	})
	if err != nil {
		return nil, integrity("invoice", "UpdatePaymentStatus", id, err)
	}
	return invoice, nil
}

// Delete clears the sale's back-reference before removing the invoice row.
func (s *invoiceService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByID(tx, id)
		if err != nil {
			return lookup("invoice", id, err)
		}
		if err := s.saleRepo.SetInvoice(tx, invoice.SalesMasterID, nil); err != nil {
			return err
		}
		return s.invoiceRepo.Delete(tx, id)
	})
	return integrity("invoice", "Delete", id, err)
}

func (s *invoiceService) List(ctx context.Context) ([]model.Invoice, error) {
	return s.invoiceRepo.FindAll(ctx)
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, lookup("invoice", id, err)
	}
	return invoice, nil
}
