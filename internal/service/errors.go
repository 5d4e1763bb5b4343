package service

import (
	"errors"
	"fmt"
	"strings"

	"go-inventory-ledger/pkg/logger"
	"go-inventory-ledger/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a clash with an existing unique value.
type ConflictError struct {
	Value   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Value)
}

type InsufficientStockError struct {
	Product   string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Required: %d", e.Product, e.Available, e.Required)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IntegrityError wraps a storage failure in the middle of a multi-step write.
// The surrounding transaction has been rolled back when callers see it.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

var ErrUnauthorized = errors.New("unauthorized")

func notFound(entity string, id uuid.UUID) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// isDomainError reports whether err is one of the typed client errors above.
func isDomainError(err error) bool {
	var (
		ve *ValidationError
		ce *ConflictError
		ie *InsufficientStockError
		ne *NotFoundError
	)
	return errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &ie) || errors.As(err, &ne)
}

// integrity turns an unexpected storage error into a logged IntegrityError; typed errors pass through.
func integrity(module, op string, data any, err error) error {
	if err == nil || isDomainError(err) || errors.Is(err, ErrUnauthorized) {
		return err
	}
	var existing *IntegrityError
	if errors.As(err, &existing) {
		return err
	}
	logger.LogError(module, op, "transaction rolled back", data, err)
	return &IntegrityError{Op: op, Err: err}
}

// lookup maps gorm.ErrRecordNotFound onto a NotFoundError.
func lookup(entity string, id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		field := first.FailedField
		// drop the struct name: "SaleRequest.details[0].quantity" -> "details[0].quantity"
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("failed on '%s'", first.Tag),
		}
	}
	return nil
}

// Actor is the authenticated caller recorded on written rows.
type Actor struct {
	ID    string
	Name  string
	Email string
}
