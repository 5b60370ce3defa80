package pricing

import (
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// PRICE TABLE SNAPSHOT

// Table is an immutable set of unit prices keyed by (size, color, duplex).
// A reload builds a fresh Table and swaps it into the Store; entries are
// never mutated after construction.
type Table struct {
	prices map[ComboKey]decimal.Decimal
}

// NewTable builds a table from entries. A later entry with the same key
// overwrites an earlier one.
func NewTable(entries []Entry) *Table {
	prices := make(map[ComboKey]decimal.Decimal, len(entries))
	for _, e := range entries {
		prices[e.Key()] = e.PricePerUnit
	}
	return &Table{prices: prices}
}

// UnitPrice returns the price per page for the combination. Combinations
// that are missing or priced at zero or below are reported as not found.
func (t *Table) UnitPrice(key ComboKey) (decimal.Decimal, bool) {
	p, ok := t.prices[key]
	if !ok || !p.IsPositive() {
		return decimal.Decimal{}, false
	}
	return p, true
}

// Available lists the combinations that have a positive price, in a fixed
// order (size, then color, then duplex) so user-facing listings are stable.
func (t *Table) Available() []Entry {
	entries := make([]Entry, 0, len(t.prices))
	for key, p := range t.prices {
		if !p.IsPositive() {
			continue
		}
		entries = append(entries, Entry{Size: key.Size, Color: key.Color, Duplex: key.Duplex, PricePerUnit: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size < entries[j].Size
		}
		if entries[i].Color != entries[j].Color {
			return entries[i].Color < entries[j].Color
		}
		return entries[i].Duplex < entries[j].Duplex
	})
	return entries
}

func (t *Table) Len() int {
	return len(t.prices)
}

// DefaultTable is the built-in price list used when no spreadsheet is
// configured. Prices are THB per page.
func DefaultTable() *Table {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return NewTable([]Entry{
		{SizeA4, ColorBW, DuplexSingle, price("0.5")},
		{SizeA4, ColorBW, DuplexDouble, price("1")},
		{SizeA4, ColorFull, DuplexSingle, price("2")},
		{SizeA4, ColorFull, DuplexDouble, price("4")},
		{SizeA3, ColorBW, DuplexSingle, price("1")},
		{SizeA3, ColorBW, DuplexDouble, price("2")},
		{SizeA3, ColorFull, DuplexSingle, price("4")},
		{SizeA3, ColorFull, DuplexDouble, price("8")},
	})
}

// Store holds the current table behind an atomic pointer so a hot reload
// swaps the whole snapshot and in-flight quotes keep the one they loaded.
type Store struct {
	table atomic.Pointer[Table]
}

func NewStore(t *Table) *Store {
	s := &Store{}
	s.table.Store(t)
	return s
}

func (s *Store) Load() *Table {
	return s.table.Load()
}

func (s *Store) Swap(t *Table) {
	s.table.Store(t)
}
