package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SPREADSHEET LOAD / EXPORT

const priceSheet = "Prices"

// LoadTableXLSX reads a price spreadsheet with the columns
// Size | Color | Duplex | PricePerPage (header row first). Rows that do not
// parse are skipped with a warning so one bad row never blocks a reload.
func LoadTableXLSX(path string, logger *zap.Logger) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(priceSheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", priceSheet, err)
	}

	var entries []Entry
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		entry, err := parseRow(row)
		if err != nil {
			logger.Warn("Skipping price row",
				zap.Int("row", i+1),
				zap.Strings("cells", row),
				zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable price rows in %s", path)
	}

	logger.Info("Loaded price table",
		zap.String("path", path),
		zap.Int("entries", len(entries)))

	return NewTable(entries), nil
}

func parseRow(row []string) (Entry, error) {
	if len(row) < 4 {
		return Entry{}, fmt.Errorf("expected 4 cells, got %d", len(row))
	}

	size, err := parseSize(row[0])
	if err != nil {
		return Entry{}, err
	}
	color, err := parseColor(row[1])
	if err != nil {
		return Entry{}, err
	}
	duplex, err := parseDuplex(row[2])
	if err != nil {
		return Entry{}, err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return Entry{}, fmt.Errorf("parse price %q: %w", row[3], err)
	}
	if !price.IsPositive() {
		return Entry{}, fmt.Errorf("price %s is not positive", price)
	}

	return Entry{Size: size, Color: color, Duplex: duplex, PricePerUnit: price}, nil
}

func parseSize(s string) (PaperSize, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A3":
		return SizeA3, nil
	case "A4":
		return SizeA4, nil
	case "A5":
		return SizeA5, nil
	}
	return "", fmt.Errorf("unknown paper size %q", s)
}

func parseColor(s string) (ColorMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BW", "B/W", "BLACK", "MONO":
		return ColorBW, nil
	case "COLOR", "COLOUR":
		return ColorFull, nil
	}
	return "", fmt.Errorf("unknown color mode %q", s)
}

func parseDuplex(s string) (DuplexMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SINGLE", "1", "SIMPLEX":
		return DuplexSingle, nil
	case "DOUBLE", "2", "DUPLEX":
		return DuplexDouble, nil
	}
	return "", fmt.Errorf("unknown duplex mode %q", s)
}

// ExportTableXLSX writes the current table to an xlsx file for the shop
// owner, one combination per row.
func ExportTableXLSX(table *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(priceSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{"Size", "Color", "Duplex", "PricePerPage"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(priceSheet, cell, header)
	}

	for row, e := range table.Available() {
		data := []interface{}{
			string(e.Size),
			string(e.Color),
			string(e.Duplex),
			e.PricePerUnit.InexactFloat64(),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(priceSheet, cell, value)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(priceSheet, "A1", "D1", style)

	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
