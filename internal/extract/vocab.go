package extract

import (
	"strconv"
	"strings"

	"copyshop-bot/internal/pricing"
)

// TOKEN VOCABULARY

// Customers write Thai and English interchangeably, so every token class
// carries both. Matching is case-insensitive substring matching inside a
// captured group, the way the shop's customers actually abbreviate things
// ("a4สี", "A4 color").

// sizeCodes is the closed set of recognized paper sizes, in scan order.
var sizeCodes = []struct {
	token string
	size  pricing.PaperSize
}{
	{"a3", pricing.SizeA3},
	{"a4", pricing.SizeA4},
	{"a5", pricing.SizeA5},
}

// colorTokens mark a request as full color; absence means black and white.
var colorTokens = []string{"สี", "color", "colour"}

// duplexTokens mark a request as double-sided; absence means single-sided.
// "สอง" covers "สองหน้า", "หลัง" covers "หน้าหลัง".
var duplexTokens = []string{"สอง", "หลัง", "double"}

// lastSize scans every captured group and returns the last recognized size
// code in scan order. When a message mentions two sizes the later one
// deliberately overwrites the earlier one; the tie-break is pinned by a test.
func lastSize(groups []string) (pricing.PaperSize, bool) {
	var found pricing.PaperSize
	ok := false
	for _, g := range groups {
		lower := strings.ToLower(g)
		best := -1
		for _, sc := range sizeCodes {
			if idx := strings.LastIndex(lower, sc.token); idx > best {
				best = idx
				found = sc.size
			}
		}
		if best >= 0 {
			ok = true
		}
	}
	return found, ok
}

// containsToken reports whether any captured group contains any of the
// vocabulary tokens, case-insensitively.
func containsToken(groups []string, tokens []string) bool {
	for _, g := range groups {
		lower := strings.ToLower(g)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				return true
			}
		}
	}
	return false
}

// firstQuantity returns the first captured group that is purely digits,
// parsed as a positive quantity. The first such group wins, not the
// largest and not the last; that policy is pinned by a test.
func firstQuantity(groups []string) (int, bool) {
	for _, g := range groups {
		if g == "" || !isDigits(g) {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil || n <= 0 {
			continue
		}
		return n, true
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
