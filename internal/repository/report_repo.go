package repository

import (
	"context"
	"sort"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepository interface {
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
}

// StockMovementData is one day of chart data.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	TotalStock      int64           `json:"total_stock"`
	TotalValuation  decimal.Decimal `json:"total_valuation"`
	SalesCount      int64           `json:"sales_count"`
	SalesAmount     decimal.Decimal `json:"sales_amount"`
	PurchaseCount   int64           `json:"purchase_count"`
	PurchaseAmount  decimal.Decimal `json:"purchase_amount"`
	InvoiceCount    int64           `json:"invoice_count"`
	PendingInvoices int64           `json:"pending_invoices"`
	Profit          decimal.Decimal `json:"profit"`
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

type dailyQuantity struct {
	Day      string
	Quantity int
}

func (r *reportRepo) dailyQuantities(ctx context.Context, lines, masters, fk string, startDate, endDate time.Time) ([]dailyQuantity, error) {
	rows, err := r.db.WithContext(ctx).
		Table(lines+" AS l").
		Select("DATE(m.date) AS day, COALESCE(SUM(l.quantity), 0) AS quantity").
		Joins("JOIN "+masters+" AS m ON m.id = l."+fk).
		Where("m.date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(m.date)").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dailyQuantity
	for rows.Next() {
		var d dailyQuantity
		if err := rows.Scan(&d.Day, &d.Quantity); err != nil {
			return nil, err
		}
		// postgres hands DATE back as a timestamp string
		if len(d.Day) > 10 {
			d.Day = d.Day[:10]
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetStockMovement merges purchase (inbound) and sales (outbound) quantities per day.
func (r *reportRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	inbound, err := r.dailyQuantities(ctx, "purchase_lines", "purchase_masters", "purchase_master_id", startDate, endDate)
	if err != nil {
		return nil, err
	}
	outbound, err := r.dailyQuantities(ctx, "sales_lines", "sales_masters", "sales_master_id", startDate, endDate)
	if err != nil {
		return nil, err
	}

	byDay := map[string]*StockMovementData{}
	get := func(day string) *StockMovementData {
		if d, ok := byDay[day]; ok {
			return d
		}
		d := &StockMovementData{Date: day}
		byDay[day] = d
		return d
	}
	for _, d := range inbound {
		get(d.Day).Inbound += d.Quantity
	}
	for _, d := range outbound {
		get(d.Day).Outbound += d.Quantity
	}

	results := make([]StockMovementData, 0, len(byDay))
	for _, d := range byDay {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (r *reportRepo) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	counts := []*gorm.DB{
		db.Model(&model.Product{}).Count(&stats.TotalProducts),
		db.Model(&model.Product{}).Where("stock > 0 AND stock < ?", lowStockThreshold).Count(&stats.LowStockCount),
		db.Model(&model.Product{}).Where("stock <= 0").Count(&stats.OutOfStockCount),
		db.Model(&model.SalesMaster{}).Count(&stats.SalesCount),
		db.Model(&model.PurchaseMaster{}).Count(&stats.PurchaseCount),
		db.Model(&model.Invoice{}).Count(&stats.InvoiceCount),
		db.Model(&model.Invoice{}).Where("payment_status <> ?", model.PaymentPaid).Count(&stats.PendingInvoices),
	}
	for _, q := range counts {
		if q.Error != nil {
			return nil, q.Error
		}
	}

	// Row().Scan lets decimal.Decimal read whatever numeric type the driver returns
	sums := []struct {
		query *gorm.DB
		dest  interface{}
	}{
		{db.Model(&model.Product{}).Select("COALESCE(SUM(stock), 0)"), &stats.TotalStock},
		{db.Model(&model.Product{}).Select("COALESCE(SUM(stock * price), 0)"), &stats.TotalValuation},
		{db.Model(&model.SalesMaster{}).Select("COALESCE(SUM(amount), 0)"), &stats.SalesAmount},
		{db.Model(&model.PurchaseMaster{}).Select("COALESCE(SUM(total_amount), 0)"), &stats.PurchaseAmount},
	}
	for _, sum := range sums {
		if err := sum.query.Row().Scan(sum.dest); err != nil {
			return nil, err
		}
	}

	stats.Profit = stats.SalesAmount.Sub(stats.PurchaseAmount)
	return &stats, nil
}
