package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSalesReportWindow(t *testing.T) {
	f := newFixture(t)
	_, _ = scenarioA(t, f)

	report, err := f.reports.Build(context.Background(), ReportSales, "2026-10-01", "2026-10-02")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, 10, report.Quantity)
	assert.True(t, report.TotalAmount.Equal(dec(100)))
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Jane", report.Rows[0].Party)

	empty, err := f.reports.Build(context.Background(), ReportSales, "2026-10-03", "2026-10-05")
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
}

func TestPurchaseReportAndBadInput(t *testing.T) {
	f := newFixture(t)
	_, _ = scenarioA(t, f)

	report, err := f.reports.Build(context.Background(), ReportPurchases, "2026-10-01", "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
	assert.True(t, report.TotalAmount.Equal(dec(40)))

	var verr *ValidationError
	_, err = f.reports.Build(context.Background(), "returns", "", "")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "type", verr.Field)

	_, err = f.reports.Build(context.Background(), ReportSales, "2026-10-05", "2026-10-01")
	assert.True(t, errors.As(err, &verr))
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	_, _ = scenarioA(t, f)

	out, err := f.reports.Export(context.Background(), ReportSales, "csv", "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", out.ContentType)

	records, err := csv.NewReader(bytes.NewReader(out.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, []string{"2026-10-02", "BILL0001", "Jane", "1", "10", "100.00"}, records[1])
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	_, _ = scenarioA(t, f)

	out, err := f.reports.Export(context.Background(), ReportPurchases, "xlsx", "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Contains(t, out.Filename, ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(out.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Bill No", rows[0][1])
	assert.Equal(t, "P-1", rows[1][1])
	assert.Equal(t, "Total", rows[2][0])

	_, err = f.reports.Export(context.Background(), ReportPurchases, "pdf", "", "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDashboardStatsAndMovement(t *testing.T) {
	f := newFixture(t)
	_, _ = scenarioA(t, f)
	f.product(t, "Empty", 1, 0)
	f.product(t, "Few", 1, 3)

	stats, err := f.dashboard.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.OutOfStockCount)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(18), stats.TotalStock)
	assert.Equal(t, int64(1), stats.SalesCount)
	assert.True(t, stats.SalesAmount.Equal(dec(100)))
	assert.True(t, stats.PurchaseAmount.Equal(dec(40)))
	assert.True(t, stats.Profit.Equal(dec(60)))
}
