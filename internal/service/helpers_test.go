package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/lock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []StockEvent
}

func (r *recorder) Publish(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := event.(StockEvent); ok {
		r.events = append(r.events, e)
	}
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	catalog   CatalogService
	purchases PurchaseService
	sales     SalesService
	invoices  InvoiceService
	parties   PartyService
	reports   ReportService
	dashboard DashboardService
	sequences SequenceService
	events    *recorder
	actor     Actor
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, model.Migrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	invoiceRepo := repository.NewInvoiceRepo(db)
	seqRepo := repository.NewSequenceRepo(db)

	locker := lock.NewLocalLocker()
	events := &recorder{}
	book := NewStockBook(stockRepo, productRepo, locker)
	sequences := NewSequenceService(db, seqRepo)

	return &fixture{
		db:        db,
		catalog:   NewCatalogService(db, productRepo, stockRepo, book, events),
		purchases: NewPurchaseService(db, purchaseRepo, supplierRepo, productRepo, book, sequences, events),
		sales:     NewSalesService(db, saleRepo, invoiceRepo, productRepo, book, sequences, events),
		invoices:  NewInvoiceService(db, invoiceRepo, saleRepo, sequences, locker, decimal.NewFromInt(18)),
		parties:   NewPartyService(db, supplierRepo, customerRepo, "IN"),
		reports:   NewReportService(saleRepo, purchaseRepo),
		dashboard: NewDashboardService(repository.NewReportRepo(db), 10),
		sequences: sequences,
		events:    events,
		actor:     Actor{ID: uuid.NewString(), Name: "Tester", Email: "tester@example.com"},
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *fixture) product(t *testing.T, name string, price int64, initial int) *model.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), f.actor, &CreateProductRequest{
		Name: name, Price: dec(price), InitialStock: initial,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) supplier(t *testing.T, name string) *model.Supplier {
	t.Helper()
	s, err := f.parties.CreateSupplier(context.Background(), f.actor, &PartyRequest{Name: name})
	require.NoError(t, err)
	return s
}

// counters returns {opening, inward, outward, closing} and the product counter.
func (f *fixture) counters(t *testing.T, productID uuid.UUID) ([4]int, int) {
	t.Helper()
	var ledger model.StockLedger
	require.NoError(t, f.db.Where("product_id = ?", productID).First(&ledger).Error)
	var product model.Product
	require.NoError(t, f.db.First(&product, "id = ?", productID).Error)
	return [4]int{ledger.OpeningStock, ledger.Inward, ledger.Outward, ledger.ClosingStock}, product.Stock
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func purchaseOf(supplierID uuid.UUID, billNo string, items ...PurchaseItem) *PurchaseRequest {
	return &PurchaseRequest{Supplier: supplierID, BillNo: billNo, Date: "2026-10-01", Items: items}
}

func saleOf(client string, lines ...SaleLineRequest) *SaleRequest {
	return &SaleRequest{ClientName: client, Date: "2026-10-02", Details: lines}
}
