package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioA: product with 20 opening, purchase 5 @8, sale 10 @10.
func scenarioA(t *testing.T, f *fixture) (*model.Product, *model.SalesMaster) {
	t.Helper()
	ctx := context.Background()
	p := f.product(t, "Widget", 10, 20)
	c, _ := f.counters(t, p.ID)
	require.Equal(t, [4]int{20, 0, 0, 20}, c)

	sup := f.supplier(t, "Acme Traders")
	_, err := f.purchases.Create(ctx, f.actor, purchaseOf(sup.ID, "P-1", PurchaseItem{ProductID: p.ID, Price: dec(8), Quantity: 5}))
	require.NoError(t, err)

	sale, err := f.sales.Create(ctx, f.actor, saleOf("Jane", SaleLineRequest{Product: p.ID, Quantity: 10, Rate: dec(10)}))
	require.NoError(t, err)
	return p, sale
}

func TestScenarioAPurchaseThenSale(t *testing.T) {
	f := newFixture(t)
	p, sale := scenarioA(t, f)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{20, 5, 10, 15}, c)
	assert.Equal(t, 15, stock)
	assert.True(t, sale.Amount.Equal(dec(100)))
	assert.Equal(t, "BILL0001", sale.BillNo)
	if assert.Len(t, sale.Lines, 1) {
		assert.Equal(t, 1, sale.Lines[0].SrNo)
	}
	assert.Equal(t, []string{"product_created", "purchase_created", "sale_created"}, f.events.actions())
}

func TestScenarioBInsufficientStockHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	p, _ := scenarioA(t, f)
	salesBefore := f.count(t, &model.SalesMaster{})
	linesBefore := f.count(t, &model.SalesLine{})

	_, err := f.sales.Create(context.Background(), f.actor, saleOf("Bob", SaleLineRequest{Product: p.ID, Quantity: 30, Rate: dec(10)}))
	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Contains(t, err.Error(), "Available: 15, Required: 30")
	assert.Contains(t, err.Error(), "Widget")

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{20, 5, 10, 15}, c)
	assert.Equal(t, 15, stock)
	assert.Equal(t, salesBefore, f.count(t, &model.SalesMaster{}))
	assert.Equal(t, linesBefore, f.count(t, &model.SalesLine{}))
}

func TestScenarioCInvoiceTotals(t *testing.T) {
	f := newFixture(t)
	_, sale := scenarioA(t, f)

	inv, err := f.invoices.Generate(context.Background(), f.actor, sale.ID, nil)
	require.NoError(t, err)
	assert.True(t, inv.Subtotal.Equal(dec(100)))
	assert.True(t, inv.GSTAmount.Equal(dec(18)))
	assert.True(t, inv.TotalAmount.Equal(dec(118)))
	assert.Equal(t, "INV-0000001", inv.InvoiceNumber)
	assert.Equal(t, model.PaymentPending, inv.PaymentStatus)
	assert.Equal(t, model.MethodCash, inv.PaymentMethod)
	assert.Equal(t, "Jane", inv.ClientName)
	assert.Equal(t, model.InvoiceGenerated, inv.Status)
	assert.True(t, inv.Date.Equal(sale.Date), "invoice date %v, sale date %v", inv.Date, sale.Date)

	got, err := f.sales.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, inv.ID, *got.InvoiceID)

	stored, err := f.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Date.Equal(sale.Date))
}

func TestScenarioDDeleteSaleRestoresStock(t *testing.T) {
	f := newFixture(t)
	p, sale := scenarioA(t, f)

	require.NoError(t, f.sales.Delete(context.Background(), f.actor, sale.ID))

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{20, 5, 0, 25}, c)
	assert.Equal(t, 25, stock)
	assert.Zero(t, f.count(t, &model.SalesLine{}))
	assert.Zero(t, f.count(t, &model.SalesMaster{}))
}

func TestDeleteInvoicedSaleRemovesInvoice(t *testing.T) {
	f := newFixture(t)
	_, sale := scenarioA(t, f)
	_, err := f.invoices.Generate(context.Background(), f.actor, sale.ID, nil)
	require.NoError(t, err)

	require.NoError(t, f.sales.Delete(context.Background(), f.actor, sale.ID))
	assert.Zero(t, f.count(t, &model.Invoice{}))
}

func TestSaleUpdateReversesBeforeReapplying(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Bolt", 2, 6)

	sale, err := f.sales.Create(ctx, f.actor, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 5, Rate: dec(2)}))
	require.NoError(t, err)

	// 3 <= 6 only holds once the original 5 are put back
	updated, err := f.sales.Update(ctx, f.actor, sale.ID, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 3, Rate: dec(2)}))
	require.NoError(t, err)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{6, 0, 3, 3}, c)
	assert.Equal(t, 3, stock)
	assert.Equal(t, sale.BillNo, updated.BillNo)
	assert.True(t, updated.Amount.Equal(dec(6)))
	assert.Equal(t, int64(1), f.count(t, &model.SalesLine{}))
}

func TestSaleUpdateRejectedLeavesOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Nut", 1, 10)
	sale, err := f.sales.Create(ctx, f.actor, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 4, Rate: dec(1)}))
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, f.actor, sale.ID, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 11, Rate: dec(1)}))
	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 10, insufficient.Available)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{10, 0, 4, 6}, c)
	assert.Equal(t, 6, stock)
	got, err := f.sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 4, got.Lines[0].Quantity)
}

func TestSufficiencyAggregatesRepeatedProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Gear", 5, 5)

	_, err := f.sales.Create(context.Background(), f.actor, saleOf("Ann",
		SaleLineRequest{Product: p.ID, Quantity: 3, Rate: dec(5)},
		SaleLineRequest{Product: p.ID, Quantity: 3, Rate: dec(5)},
	))
	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 6, insufficient.Required)
	assert.Equal(t, 5, insufficient.Available)
}

func TestSaleOfProductWithoutLedgerRowIsInsufficient(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Ghost", 1, 0)
	require.NoError(t, f.db.Where("product_id = ?", p.ID).Delete(&model.StockLedger{}).Error)

	available, err := f.catalog.Available(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, available)

	_, err = f.sales.Create(context.Background(), f.actor, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)}))
	var insufficient *InsufficientStockError
	assert.True(t, errors.As(err, &insufficient))
}

func TestSrNoFollowsInputOrder(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 1, 10)
	b := f.product(t, "B", 1, 10)

	sale, err := f.sales.Create(context.Background(), f.actor, saleOf("Ann",
		SaleLineRequest{Product: b.ID, Quantity: 1, Rate: dec(1)},
		SaleLineRequest{Product: a.ID, Quantity: 2, Rate: dec(1)},
	))
	require.NoError(t, err)

	got, err := f.sales.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, 1, got.Lines[0].SrNo)
	assert.Equal(t, b.ID, got.Lines[0].ProductID)
	assert.Equal(t, 2, got.Lines[1].SrNo)
	assert.Equal(t, a.ID, got.Lines[1].ProductID)
}

func TestBillNumbersIncrease(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cog", 1, 100)

	last := 0
	for i := 0; i < 5; i++ {
		sale, err := f.sales.Create(context.Background(), f.actor, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)}))
		require.NoError(t, err)
		n, err := strconv.Atoi(sale.BillNo[len("BILL"):])
		require.NoError(t, err)
		assert.Greater(t, n, last)
		last = n
	}
}

func TestBillNumberNotReusedAfterDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cog", 1, 100)
	line := SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)}

	first, err := f.sales.Create(ctx, f.actor, saleOf("Ann", line))
	require.NoError(t, err)
	require.NoError(t, f.sales.Delete(ctx, f.actor, first.ID))

	second, err := f.sales.Create(ctx, f.actor, saleOf("Ann", line))
	require.NoError(t, err)
	assert.Equal(t, "BILL0001", first.BillNo)
	assert.Equal(t, "BILL0002", second.BillNo)
}

func TestSuppliedBillNoMustBeUnique(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cog", 1, 100)
	req := saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)})
	req.BillNo = "MANUAL-1"
	_, err := f.sales.Create(context.Background(), f.actor, req)
	require.NoError(t, err)

	req2 := saleOf("Bob", SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)})
	req2.BillNo = "MANUAL-1"
	_, err = f.sales.Create(context.Background(), f.actor, req2)
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestSaleRejectsUnknownProductAndBadQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cog", 1, 100)

	_, err := f.sales.Create(context.Background(), f.actor, saleOf("Ann", SaleLineRequest{Product: uuid.New(), Quantity: 1, Rate: dec(1)}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "details[0].product", verr.Field)

	_, err = f.sales.Create(context.Background(), f.actor, saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 0, Rate: dec(1)}))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "details[0].quantity", verr.Field)

	_, err = f.sales.Create(context.Background(), f.actor, saleOf("", SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)}))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "client_name", verr.Field)
}

func TestUpdateMissingSaleIsNotFound(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cog", 1, 100)
	_, err := f.sales.Update(context.Background(), f.actor, uuid.New(), saleOf("Ann", SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(1)}))
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestLedgerMatchesCounterAfterMixedTraffic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.supplier(t, "Acme")
	a := f.product(t, "A", 3, 10)
	b := f.product(t, "B", 4, 0)

	pur, err := f.purchases.Create(ctx, f.actor, purchaseOf(sup.ID, "P-9",
		PurchaseItem{ProductID: a.ID, Price: dec(2), Quantity: 4},
		PurchaseItem{ProductID: b.ID, Price: dec(3), Quantity: 7},
	))
	require.NoError(t, err)
	sale, err := f.sales.Create(ctx, f.actor, saleOf("Ann",
		SaleLineRequest{Product: a.ID, Quantity: 12, Rate: dec(3)},
		SaleLineRequest{Product: b.ID, Quantity: 2, Rate: dec(4)},
	))
	require.NoError(t, err)
	_, err = f.purchases.Update(ctx, f.actor, pur.ID, purchaseOf(sup.ID, "P-9",
		PurchaseItem{ProductID: a.ID, Price: dec(2), Quantity: 6},
		PurchaseItem{ProductID: b.ID, Price: dec(3), Quantity: 2},
	))
	require.NoError(t, err)
	require.NoError(t, f.sales.Delete(ctx, f.actor, sale.ID))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		c, stock := f.counters(t, id)
		assert.Equal(t, c[0]+c[1]-c[2], c[3])
		assert.Equal(t, c[3], stock)
	}
	c, _ := f.counters(t, a.ID)
	assert.Equal(t, [4]int{10, 6, 0, 16}, c)

	drift, err := f.catalog.Mismatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestSuppliedBillNoAdvancesCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Widget", 10, 10)
	line := SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(10)}

	first, err := f.sales.Create(ctx, f.actor, saleOf("A", line))
	require.NoError(t, err)
	assert.Equal(t, "BILL0001", first.BillNo)

	manual := saleOf("B", line)
	manual.BillNo = "BILL0002"
	_, err = f.sales.Create(ctx, f.actor, manual)
	require.NoError(t, err)

	next, err := f.sales.Create(ctx, f.actor, saleOf("C", line))
	require.NoError(t, err)
	assert.Equal(t, "BILL0003", next.BillNo)

	// a lower supplied number leaves the counter where it is
	low := saleOf("D", line)
	low.BillNo = "BILL0000"
	_, err = f.sales.Create(ctx, f.actor, low)
	require.NoError(t, err)

	last, err := f.sales.Create(ctx, f.actor, saleOf("E", line))
	require.NoError(t, err)
	assert.Equal(t, "BILL0004", last.BillNo)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)
	const workers = 8
	p := f.product(t, "Widget", 10, workers-1)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		ok   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.sales.Create(context.Background(), f.actor,
				saleOf("client-"+strconv.Itoa(i), SaleLineRequest{Product: p.ID, Quantity: 1, Rate: dec(10)}))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ok++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers-1, ok)
	require.Len(t, errs, 1)
	var insufficient *InsufficientStockError
	require.True(t, errors.As(errs[0], &insufficient), "unexpected error: %v", errs[0])
	assert.Equal(t, 0, insufficient.Available)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{workers - 1, 0, workers - 1, 0}, c)
	assert.Equal(t, c[3], stock)
	assert.EqualValues(t, workers-1, f.count(t, &model.SalesMaster{}))
}
