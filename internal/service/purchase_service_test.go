package service

import (
	"context"
	"errors"
	"testing"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRejectsUnknownSupplier(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 0)

	_, err := f.purchases.Create(context.Background(), f.actor, purchaseOf(uuid.New(), "B-1", PurchaseItem{ProductID: p.ID, Price: dec(1), Quantity: 1}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "supplier", verr.Field)
	assert.Zero(t, f.count(t, &model.PurchaseMaster{}))
}

func TestPurchaseBillNoAcrossSuppliers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Widget", 10, 0)
	acme := f.supplier(t, "Acme")
	zenith := f.supplier(t, "Zenith")
	item := PurchaseItem{ProductID: p.ID, Price: dec(2), Quantity: 3}

	_, err := f.purchases.Create(ctx, f.actor, purchaseOf(acme.ID, "B-100", item))
	require.NoError(t, err)

	// same supplier may reuse a bill number (split shipments)
	_, err = f.purchases.Create(ctx, f.actor, purchaseOf(acme.ID, "B-100", item))
	require.NoError(t, err)

	_, err = f.purchases.Create(ctx, f.actor, purchaseOf(zenith.ID, "B-100", item))
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "B-100", conflict.Value)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{0, 6, 0, 6}, c)
	assert.Equal(t, 6, stock)
}

func TestPurchaseCreateComputesAmounts(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, 0)
	b := f.product(t, "B", 10, 0)
	sup := f.supplier(t, "Acme")

	m, err := f.purchases.Create(context.Background(), f.actor, purchaseOf(sup.ID, "B-1",
		PurchaseItem{ProductID: a.ID, Price: dec(8), Quantity: 5},
		PurchaseItem{ProductID: b.ID, Name: "B custom", Price: dec(3), Quantity: 2},
	))
	require.NoError(t, err)
	assert.True(t, m.TotalAmount.Equal(dec(46)))
	assert.Equal(t, "Acme", m.SupplierName)
	require.Len(t, m.Lines, 2)
	assert.Equal(t, "A", m.Lines[0].ProductName)
	assert.Equal(t, "B custom", m.Lines[1].ProductName)
	assert.True(t, m.Lines[0].Amount.Equal(dec(40)))
}

func TestPurchaseMidLoopFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 0)
	sup := f.supplier(t, "Acme")

	_, err := f.purchases.Create(context.Background(), f.actor, purchaseOf(sup.ID, "B-1",
		PurchaseItem{ProductID: p.ID, Price: dec(1), Quantity: 5},
		PurchaseItem{ProductID: uuid.New(), Price: dec(1), Quantity: 5},
	))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items[1].productId", verr.Field)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{0, 0, 0, 0}, c)
	assert.Zero(t, stock)
	assert.Zero(t, f.count(t, &model.PurchaseMaster{}))
	assert.Zero(t, f.count(t, &model.PurchaseLine{}))
}

func TestPurchaseStorageFailureIsIntegrityError(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 0)
	sup := f.supplier(t, "Acme")
	require.NoError(t, f.db.Migrator().DropTable(&model.PurchaseLine{}))

	_, err := f.purchases.Create(context.Background(), f.actor, purchaseOf(sup.ID, "B-1", PurchaseItem{ProductID: p.ID, Price: dec(1), Quantity: 5}))
	var ierr *IntegrityError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "Create", ierr.Op)

	c, _ := f.counters(t, p.ID)
	assert.Equal(t, [4]int{0, 0, 0, 0}, c)
	assert.Zero(t, f.count(t, &model.PurchaseMaster{}))
}

func TestPurchaseUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 1)
	b := f.product(t, "B", 10, 1)
	sup := f.supplier(t, "Acme")

	m, err := f.purchases.Create(ctx, f.actor, purchaseOf(sup.ID, "B-1", PurchaseItem{ProductID: a.ID, Price: dec(1), Quantity: 5}))
	require.NoError(t, err)

	updated, err := f.purchases.Update(ctx, f.actor, m.ID, purchaseOf(sup.ID, "B-2", PurchaseItem{ProductID: b.ID, Price: dec(2), Quantity: 4}))
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, "B-2", updated.BillNo)
	assert.True(t, updated.TotalAmount.Equal(dec(8)))

	ca, sa := f.counters(t, a.ID)
	assert.Equal(t, [4]int{1, 0, 0, 1}, ca)
	assert.Equal(t, 1, sa)
	cb, sb := f.counters(t, b.ID)
	assert.Equal(t, [4]int{1, 4, 0, 5}, cb)
	assert.Equal(t, 5, sb)

	require.NoError(t, f.purchases.Delete(ctx, f.actor, m.ID))
	cb, sb = f.counters(t, b.ID)
	assert.Equal(t, [4]int{1, 0, 0, 1}, cb)
	assert.Equal(t, 1, sb)
	assert.Zero(t, f.count(t, &model.PurchaseLine{}))

	err = f.purchases.Delete(ctx, f.actor, m.ID)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestPurchaseQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 10, 0)
	acme := f.supplier(t, "Acme")
	other := f.supplier(t, "Other")
	_, err := f.purchases.Create(ctx, f.actor, purchaseOf(other.ID, "X-2", PurchaseItem{ProductID: p.ID, Price: dec(1), Quantity: 1}))
	require.NoError(t, err)
	_, err = f.purchases.Create(ctx, f.actor, purchaseOf(acme.ID, "BILL-0000041", PurchaseItem{ProductID: p.ID, Price: dec(1), Quantity: 1}))
	require.NoError(t, err)

	bills, err := f.purchases.SupplierBills(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "BILL-0000041", bills[0].BillNo)

	all, err := f.purchases.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	next, err := f.purchases.NextBillNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BILL-0000042", next)

	// suggestions are not reserved
	again, err := f.purchases.NextBillNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, again)
}

func TestPurchaseUpdateMovesBillToAnotherSupplier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Widget", 10, 0)
	acme := f.supplier(t, "Acme")
	zenith := f.supplier(t, "Zenith")
	item := PurchaseItem{ProductID: p.ID, Price: dec(2), Quantity: 3}

	master, err := f.purchases.Create(ctx, f.actor, purchaseOf(acme.ID, "B-7", item))
	require.NoError(t, err)

	moved, err := f.purchases.Update(ctx, f.actor, master.ID, purchaseOf(zenith.ID, "B-7", item))
	require.NoError(t, err)
	assert.Equal(t, zenith.ID, moved.SupplierID)
	assert.Equal(t, "Zenith", moved.SupplierName)
	assert.Equal(t, "B-7", moved.BillNo)

	// the bill now belongs to Zenith, so Acme may not take it back on a new purchase
	_, err = f.purchases.Create(ctx, f.actor, purchaseOf(acme.ID, "B-7", item))
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{0, 3, 0, 3}, c)
	assert.Equal(t, 3, stock)
}
