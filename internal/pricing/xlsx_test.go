package pricing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func writePriceFile(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(priceSheet)
	require.NoError(t, err)

	header := []interface{}{"Size", "Color", "Duplex", "PricePerPage"}
	for col, v := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, f.SetCellValue(priceSheet, cell, v))
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, f.SetCellValue(priceSheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "prices.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadTableXLSX(t *testing.T) {
	path := writePriceFile(t, [][]interface{}{
		{"A4", "BW", "Single", 0.5},
		{"a4", "color", "double", "4"},
		{"A3", "BW", "2"}, // too few cells, skipped
		{"A2", "BW", "Single", 1},     // unknown size, skipped
		{"A3", "BW", "Single", "-1"},  // non-positive price, skipped
		{"A5", "Colour", "Duplex", 3}, // alias spellings accepted
	})

	table, err := LoadTableXLSX(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	p, ok := table.UnitPrice(ComboKey{SizeA4, ColorFull, DuplexDouble})
	require.True(t, ok)
	assert.True(t, p.Equal(dec("4")))

	p, ok = table.UnitPrice(ComboKey{SizeA5, ColorFull, DuplexDouble})
	require.True(t, ok)
	assert.True(t, p.Equal(dec("3")))
}

func TestLoadTableXLSX_NoUsableRows(t *testing.T) {
	path := writePriceFile(t, [][]interface{}{
		{"A9", "BW", "Single", 1},
	})

	_, err := LoadTableXLSX(path, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadTableXLSX_MissingFile(t *testing.T) {
	_, err := LoadTableXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), zap.NewNop())
	assert.Error(t, err)
}

func TestExportTableXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, ExportTableXLSX(DefaultTable(), path))

	table, err := LoadTableXLSX(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultTable().Len(), table.Len())

	p, ok := table.UnitPrice(ComboKey{SizeA3, ColorFull, DuplexDouble})
	require.True(t, ok)
	assert.True(t, p.Equal(dec("8")))
}
