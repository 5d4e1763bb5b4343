package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go-inventory-ledger/internal/repository"

	"gorm.io/gorm"
)

// Stream describes one human-facing identifier series.
type Stream struct {
	Name    string
	Table   string
	Column  string
	Prefix  string
	Pad     int
	Pattern *regexp.Regexp
}

var (
	SalesBillStream = Stream{
		Name: "sales_bill_no", Table: "sales_masters", Column: "bill_no",
		Prefix: "BILL", Pad: 4, Pattern: regexp.MustCompile(`BILL(\d+)`),
	}
	InvoiceStream = Stream{
		Name: "invoice_number", Table: "invoices", Column: "invoice_number",
		Prefix: "INV-", Pad: 7, Pattern: regexp.MustCompile(`INV-(\d+)`),
	}
	PurchaseBillStream = Stream{
		Name: "purchase_bill_no", Table: "purchase_masters", Column: "bill_no",
		Prefix: "BILL-", Pad: 7, Pattern: regexp.MustCompile(`BILL-(\d+)`),
	}
)

func (s Stream) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Pad, n)
}

// Suffix extracts the numeric part of code, 0 when code does not match the stream pattern.
func (s Stream) Suffix(code string) int64 {
	m := s.Pattern.FindStringSubmatch(code)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type SequenceService interface {
	// Next reserves the next identifier of stream inside tx. Numbers are never handed out twice.
	Next(tx *gorm.DB, stream Stream) (string, error)
	// Observe records a caller-supplied code of stream so that Next never hands it out again.
	Observe(tx *gorm.DB, stream Stream, code string) error
	// Peek suggests latest+1 without reserving anything.
	Peek(ctx context.Context, stream Stream) (string, error)
}

type sequenceService struct {
	db      *gorm.DB
	seqRepo repository.SequenceRepository
}

func NewSequenceService(db *gorm.DB, seqRepo repository.SequenceRepository) SequenceService {
	return &sequenceService{db: db, seqRepo: seqRepo}
}

// ensure creates the stream row on first use, continuing from whatever the latest record carries.
func (s *sequenceService) ensure(tx *gorm.DB, stream Stream) error {
	exists, err := s.seqRepo.Exists(tx, stream.Name)
	if err != nil || exists {
		return err
	}
	latest, err := s.seqRepo.LatestCode(tx, stream.Table, stream.Column)
	if err != nil {
		return err
	}
	return s.seqRepo.Seed(tx, stream.Name, stream.Suffix(latest))
}

func (s *sequenceService) Next(tx *gorm.DB, stream Stream) (string, error) {
	if err := s.ensure(tx, stream); err != nil {
		return "", err
	}
	n, err := s.seqRepo.Increment(tx, stream.Name)
	if err != nil {
		return "", err
	}
	return stream.Format(n), nil
}

func (s *sequenceService) Observe(tx *gorm.DB, stream Stream, code string) error {
	n := stream.Suffix(code)
	if n == 0 {
		return nil
	}
	if err := s.ensure(tx, stream); err != nil {
		return err
	}
	return s.seqRepo.Raise(tx, stream.Name, n)
}

func (s *sequenceService) Peek(ctx context.Context, stream Stream) (string, error) {
	latest, err := s.seqRepo.LatestCode(s.db.WithContext(ctx), stream.Table, stream.Column)
	if err != nil {
		return "", err
	}
	return stream.Format(stream.Suffix(latest) + 1), nil
}
