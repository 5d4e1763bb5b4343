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

func TestCreateProductOpensLedger(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 20)
	require.NotNil(t, p.Ledger)

	c, stock := f.counters(t, p.ID)
	assert.Equal(t, [4]int{20, 0, 0, 20}, c)
	assert.Equal(t, 20, stock)
}

func TestCreateProductNameIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 10, 0)

	_, err := f.catalog.CreateProduct(context.Background(), f.actor, &CreateProductRequest{Name: "  wIdGeT ", Price: dec(1)})
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestCreateProductValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateProduct(context.Background(), f.actor, &CreateProductRequest{Name: "X", Price: dec(-1)})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "price", verr.Field)

	_, err = f.catalog.CreateProduct(context.Background(), f.actor, &CreateProductRequest{Name: "X", InitialStock: -2})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "initialStock", verr.Field)
}

func TestUpdateProductManualStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, sale := scenarioA(t, f)
	productID := sale.Lines[0].ProductID

	stock := 40
	name := "Widget XL"
	updated, err := f.catalog.UpdateProduct(ctx, f.actor, productID, &UpdateProductRequest{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Widget XL", updated.Name)
	assert.Equal(t, 40, updated.Stock)

	c, s := f.counters(t, productID)
	assert.Equal(t, [4]int{45, 5, 10, 40}, c)
	assert.Equal(t, 40, s)
}

func TestUpdateProductPriceOnlyKeepsStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 7)
	price := dec(12)
	updated, err := f.catalog.UpdateProduct(context.Background(), f.actor, p.ID, &UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(dec(12)))

	c, s := f.counters(t, p.ID)
	assert.Equal(t, [4]int{7, 0, 0, 7}, c)
	assert.Equal(t, 7, s)
}

func TestUpdateMissingProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.UpdateProduct(context.Background(), f.actor, uuid.New(), &UpdateProductRequest{})
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDeleteProductCascadesLedger(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 5)

	require.NoError(t, f.catalog.DeleteProduct(context.Background(), f.actor, p.ID))
	assert.Zero(t, f.count(t, &model.Product{}))
	assert.Zero(t, f.count(t, &model.StockLedger{}))
}

func TestDeleteReferencedProductIsConflict(t *testing.T) {
	f := newFixture(t)
	_, sale := scenarioA(t, f)

	err := f.catalog.DeleteProduct(context.Background(), f.actor, sale.Lines[0].ProductID)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(1), f.count(t, &model.StockLedger{}))
}

func TestGetAllProductsProjectsLedger(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 5)
	// counter drifts, listing still shows the ledger
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("stock", 99).Error)

	products, err := f.catalog.GetAllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 5, products[0].Stock)
}

func TestReconcileRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 1, 5)
	b := f.product(t, "B", 1, 3)
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", a.ID).Update("stock", 99).Error)
	require.NoError(t, f.db.Model(&model.StockLedger{}).Where("product_id = ?", b.ID).Update("closing_stock", 50).Error)

	drift, err := f.catalog.Mismatches(ctx)
	require.NoError(t, err)
	assert.Len(t, drift, 2)

	fixed, err := f.catalog.Reconcile(ctx, f.actor)
	require.NoError(t, err)
	assert.Len(t, fixed, 2)

	ca, sa := f.counters(t, a.ID)
	assert.Equal(t, [4]int{5, 0, 0, 5}, ca)
	assert.Equal(t, 5, sa)
	cb, sb := f.counters(t, b.ID)
	assert.Equal(t, [4]int{3, 0, 0, 3}, cb)
	assert.Equal(t, 3, sb)

	drift, err = f.catalog.Mismatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}
