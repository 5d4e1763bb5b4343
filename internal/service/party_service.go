package service

import (
	"context"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/ttacon/libphonenumber"
	"gorm.io/gorm"
)

type PartyRequest struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

type PartyService interface {
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	CreateSupplier(ctx context.Context, actor Actor, req *PartyRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, actor Actor, id uuid.UUID, req *PartyRequest) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, actor Actor, id uuid.UUID) error

	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, actor Actor, req *PartyRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, actor Actor, id uuid.UUID, req *PartyRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, actor Actor, id uuid.UUID) error
}

type partyService struct {
	db           *gorm.DB
	supplierRepo repository.SupplierRepository
	customerRepo repository.CustomerRepository
	region       string
}

func NewPartyService(db *gorm.DB, supplierRepo repository.SupplierRepository, customerRepo repository.CustomerRepository, phoneRegion string) PartyService {
	if phoneRegion == "" {
		phoneRegion = "IN"
	}
	return &partyService{
		db:           db,
		supplierRepo: supplierRepo,
		customerRepo: customerRepo,
		region:       strings.ToUpper(phoneRegion),
	}
}

// normalizePhone returns contact in E.164 form, or "" for an empty contact.
func normalizePhone(contact, region string) (string, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return "", nil
	}
	p, err := libphonenumber.Parse(contact, region)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return "", &ValidationError{Field: "contact", Message: "phone number is not valid"}
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func (s *partyService) clean(req *PartyRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(req); err != nil {
		return "", err
	}
	return normalizePhone(req.Contact, s.region)
}

func (s *partyService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.supplierRepo.FindAll(ctx)
}

func (s *partyService) GetSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, lookup("supplier", id, err)
	}
	return supplier, nil
}

func (s *partyService) CreateSupplier(ctx context.Context, actor Actor, req *PartyRequest) (*model.Supplier, error) {
	contact, err := s.clean(req)
	if err != nil {
		return nil, err
	}
	supplier := &model.Supplier{Name: req.Name, Contact: contact, Email: req.Email, Address: req.Address}
	supplier.CreatedBy = actor.ID
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *partyService) UpdateSupplier(ctx context.Context, actor Actor, id uuid.UUID, req *PartyRequest) (*model.Supplier, error) {
	contact, err := s.clean(req)
	if err != nil {
		return nil, err
	}
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = req.Name
	supplier.Contact = contact
	supplier.Email = req.Email
	supplier.Address = req.Address
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *partyService) DeleteSupplier(ctx context.Context, actor Actor, id uuid.UUID) error {
	return lookup("supplier", id, s.supplierRepo.Delete(ctx, id, actor.ID))
}

func (s *partyService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindAll(ctx)
}

func (s *partyService) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("customer", id, err)
	}
	return customer, nil
}

func (s *partyService) CreateCustomer(ctx context.Context, actor Actor, req *PartyRequest) (*model.Customer, error) {
	contact, err := s.clean(req)
	if err != nil {
		return nil, err
	}
	customer := &model.Customer{Name: req.Name, Contact: contact, Email: req.Email, Address: req.Address}
	customer.CreatedBy = actor.ID
	customer.UpdatedBy = actor.ID
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *partyService) UpdateCustomer(ctx context.Context, actor Actor, id uuid.UUID, req *PartyRequest) (*model.Customer, error) {
	contact, err := s.clean(req)
	if err != nil {
		return nil, err
	}
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = req.Name
	customer.Contact = contact
	customer.Email = req.Email
	customer.Address = req.Address
	customer.UpdatedBy = actor.ID
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *partyService) DeleteCustomer(ctx context.Context, actor Actor, id uuid.UUID) error {
	return lookup("customer", id, s.customerRepo.Delete(ctx, id, actor.ID))
}
