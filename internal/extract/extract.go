// Package extract turns a free-form customer message into a structured
// print price request, or reports that the message is not one.
package extract

import (
	"regexp"

	"copyshop-bot/internal/pricing"
)

// MESSAGE PATTERNS

// Token classes shared by the patterns below.
const (
	reSize   = `(a[345]\S*)`
	reColor  = `(ขาวดำ|สี|bw|colou?r|black|white)`
	reDuplex = `(หน้าเดียว|สองหน้า|หน้าหลัง|single|double)`
	reQty    = `(\d+)`
	reUnit   = `(?:หน้า|แผ่น|sheets?|pages?)` // "pages" and "sheets" are interchangeable
)

// patterns is ordered most specific to least specific; the first one that
// matches (and yields a positive quantity) wins. Each pattern tolerates a
// different natural word order.
var patterns = []*regexp.Regexp{
	// size, color, duplex, quantity: "A4 ขาวดำ หน้าเดียว 50 หน้า"
	regexp.MustCompile(`(?i)` + reSize + `.*?` + reColor + `.*?` + reDuplex + `.*?` + reQty),
	// color, size, duplex, quantity: "ขาวดำ A4 หน้าเดียว 50"
	regexp.MustCompile(`(?i)` + reColor + `.*?` + reSize + `.*?` + reDuplex + `.*?` + reQty),
	// quantity-first: "50 หน้า A4 ขาวดำ หน้าเดียว"
	regexp.MustCompile(`(?i)` + reQty + `\s*` + reUnit + `.*?` + reSize + `.*?` + reColor + `(?:.*?` + reDuplex + `)?`),
	// size, color, quantity (duplex defaulted): "A4 สี 20"
	regexp.MustCompile(`(?i)` + reSize + `.*?` + reColor + `.*?` + reQty),
	// color, size, quantity: "สี A3 20"
	regexp.MustCompile(`(?i)` + reColor + `.*?` + reSize + `.*?` + reQty),
	// size and quantity only, everything else defaulted: "A4 50"
	regexp.MustCompile(`(?i)` + reSize + `[^0-9]*?` + reQty),
}

// Extract scans a message for a price request. It is a pure function: no
// state, no side effects. The second return is false when the message does
// not express a price request.
//
// Field policies, applied over all captured groups of the matched pattern:
// last recognized size wins (default A4), any color token means full color
// (default BW), any double-sided token means duplex (default single), and
// the first all-digit group is the quantity. A match without a positive
// quantity falls through to the next pattern.
func Extract(message string) (pricing.PriceRequest, bool) {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		groups := match[1:]

		quantity, ok := firstQuantity(groups)
		if !ok {
			continue
		}

		req := pricing.PriceRequest{
			Size:     pricing.SizeA4,
			Color:    pricing.ColorBW,
			Duplex:   pricing.DuplexSingle,
			Quantity: quantity,
		}
		if size, ok := lastSize(groups); ok {
			req.Size = size
		}
		if containsToken(groups, colorTokens) {
			req.Color = pricing.ColorFull
		}
		if containsToken(groups, duplexTokens) {
			req.Duplex = pricing.DuplexDouble
		}
		return req, true
	}
	return pricing.PriceRequest{}, false
}
