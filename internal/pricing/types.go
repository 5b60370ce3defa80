package pricing

import "github.com/shopspring/decimal"

// PAPER / COLOR / DUPLEX ENUMS

type PaperSize string

const (
	SizeA3 PaperSize = "A3"
	SizeA4 PaperSize = "A4"
	SizeA5 PaperSize = "A5"
)

type ColorMode string

const (
	ColorBW   ColorMode = "BW"
	ColorFull ColorMode = "Color"
)

type DuplexMode string

const (
	DuplexSingle DuplexMode = "Single"
	DuplexDouble DuplexMode = "Double"
)

// PriceRequest is one parsed price question from a customer message.
// Quantity is in pages (or sheets, the vocabulary treats them the same).
type PriceRequest struct {
	Size     PaperSize  `json:"size"`
	Color    ColorMode  `json:"color"`
	Duplex   DuplexMode `json:"duplex"`
	Quantity int        `json:"quantity"`
}

// ComboKey identifies one row of the price table.
type ComboKey struct {
	Size   PaperSize
	Color  ColorMode
	Duplex DuplexMode
}

// Entry is one immutable price table row.
type Entry struct {
	Size         PaperSize
	Color        ColorMode
	Duplex       DuplexMode
	PricePerUnit decimal.Decimal
}

func (e Entry) Key() ComboKey {
	return ComboKey{Size: e.Size, Color: e.Color, Duplex: e.Duplex}
}
