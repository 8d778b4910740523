package receipt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Receipts"

var exportHeaders = []string{
	"Date",
	"Store",
	"Category",
	"Amount",
	"Line Items",
	"Notes",
	"File",
}

var exportWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 12},
	{"B", "B", 28},
	{"C", "C", 16},
	{"D", "D", 12},
	{"E", "F", 48},
	{"G", "G", 40},
}

// ExportXLSX builds a workbook of receipts dated within [from, to], either bound
// optional, oldest first. Intended for HSA reimbursement paperwork.
func (s *Service) ExportXLSX(from, to *time.Time) ([]byte, error) {
	receipts, err := s.ListReceipts()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	var total int
	// ListReceipts is newest first
	for i := len(receipts) - 1; i >= 0; i-- {
		r := receipts[i]
		if !inRange(r.Date, from, to) {
			continue
		}
		values := []any{
			r.Date.Format("2006-01-02"),
			r.StoreName,
			string(r.Category),
			centsToDollars(r.Amount),
			summarizeItems(r.LineItems),
			r.Notes,
			r.Filename,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", row, err)
		}
		total += r.Amount
		row++
	}

	totalCell, _ := excelize.CoordinatesToCellName(3, row)
	if err := f.SetSheetRow(exportSheet, totalCell, &[]any{"Total", centsToDollars(total)}); err != nil {
		return nil, fmt.Errorf("writing total: %w", err)
	}

	for _, w := range exportWidths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing xlsx: %w", err)
	}

	slog.Info("Exported receipts", "rows", row-2)
	return buf.Bytes(), nil
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func centsToDollars(cents int) float64 {
	return decimal.New(int64(cents), -2).InexactFloat64()
}

func summarizeItems(items []LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s ($%s)", item.Description, decimal.New(int64(item.Price), -2).StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}
