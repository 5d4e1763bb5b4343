package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go-inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ReportKind string

const (
	ReportSales     ReportKind = "sales"
	ReportPurchases ReportKind = "purchases"
)

// ReportRow is one master record flattened for tables and exports.
type ReportRow struct {
	Date     time.Time       `json:"date"`
	BillNo   string          `json:"bill_no"`
	Party    string          `json:"party"`
	Items    int             `json:"items"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type Report struct {
	Kind        ReportKind      `json:"kind"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Count       int             `json:"count"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Rows        []ReportRow     `json:"rows"`
}

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ReportService interface {
	Build(ctx context.Context, kind ReportKind, from, to string) (*Report, error)
	Export(ctx context.Context, kind ReportKind, format, from, to string) (*Export, error)
}

type reportService struct {
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	now          func() time.Time
}

func NewReportService(saleRepo repository.SaleRepository, purchaseRepo repository.PurchaseRepository) ReportService {
	return &reportService{saleRepo: saleRepo, purchaseRepo: purchaseRepo, now: time.Now}
}

// window defaults to the last 30 days; to is inclusive of the whole day.
func (s *reportService) window(from, to string) (time.Time, time.Time, error) {
	end, err := parseDate("to", to, s.now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := parseDate("from", from, func() time.Time { return end.AddDate(0, 0, -30) })
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(to) == len("2006-01-02") {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, &ValidationError{Field: "to", Message: "must not be before from"}
	}
	return start, end, nil
}

func (s *reportService) Build(ctx context.Context, kind ReportKind, from, to string) (*Report, error) {
	start, end, err := s.window(from, to)
	if err != nil {
		return nil, err
	}
	report := &Report{Kind: kind, From: start, To: end, TotalAmount: decimal.Zero, Rows: []ReportRow{}}

	switch kind {
	case ReportSales:
		sales, err := s.saleRepo.FindByDateRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		for _, m := range sales {
			row := ReportRow{Date: m.Date, BillNo: m.BillNo, Party: m.ClientName, Items: len(m.Lines), Amount: m.Amount}
			for _, l := range m.Lines {
				row.Quantity += l.Quantity
			}
			report.add(row)
		}
	case ReportPurchases:
		purchases, err := s.purchaseRepo.FindByDateRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		for _, m := range purchases {
			row := ReportRow{Date: m.Date, BillNo: m.BillNo, Party: m.SupplierName, Items: len(m.Lines), Amount: m.TotalAmount}
			for _, l := range m.Lines {
				row.Quantity += l.Quantity
			}
			report.add(row)
		}
	default:
		return nil, &ValidationError{Field: "type", Message: "must be sales or purchases"}
	}
	return report, nil
}

func (r *Report) add(row ReportRow) {
	r.Rows = append(r.Rows, row)
	r.Count++
	r.Quantity += row.Quantity
	r.TotalAmount = r.TotalAmount.Add(row.Amount)
}

var reportHeader = []string{"Date", "Bill No", "Party", "Items", "Quantity", "Amount"}

func (s *reportService) Export(ctx context.Context, kind ReportKind, format, from, to string) (*Export, error) {
	report, err := s.Build(ctx, kind, from, to)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-report-%s", kind, s.now().Format("20060102"))

	switch format {
	case "", "xlsx":
		body, err := report.xlsx()
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	case "csv":
		body, err := report.csv()
		if err != nil {
			return nil, err
		}
		return &Export{Filename: name + ".csv", ContentType: "text/csv", Body: body}, nil
	default:
		return nil, &ValidationError{Field: "format", Message: "must be xlsx or csv"}
	}
}

func (r *Report) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, h := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, row := range r.Rows {
		n := i + 2
		amount, _ := row.Amount.Float64()
		f.SetCellValue(sheet, "A"+fmt.Sprint(n), row.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, "B"+fmt.Sprint(n), row.BillNo)
		f.SetCellValue(sheet, "C"+fmt.Sprint(n), row.Party)
		f.SetCellValue(sheet, "D"+fmt.Sprint(n), row.Items)
		f.SetCellValue(sheet, "E"+fmt.Sprint(n), row.Quantity)
		f.SetCellValue(sheet, "F"+fmt.Sprint(n), amount)
	}
	total := len(r.Rows) + 2
	totalAmount, _ := r.TotalAmount.Float64()
	f.SetCellValue(sheet, "A"+fmt.Sprint(total), "Total")
	f.SetCellValue(sheet, "E"+fmt.Sprint(total), r.Quantity)
	f.SetCellValue(sheet, "F"+fmt.Sprint(total), totalAmount)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Report) csv() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for _, row := range r.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.BillNo,
			row.Party,
			strconv.Itoa(row.Items),
			strconv.Itoa(row.Quantity),
			row.Amount.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
