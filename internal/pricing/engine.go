package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PRICING ENGINE

// DiscountTier applies Rate to the subtotal once quantity reaches
// MinQuantity. The highest threshold met wins; tiers never stack.
type DiscountTier struct {
	MinQuantity int
	Rate        decimal.Decimal
}

// SmallJobOverride, when enabled, charges a flat per-page price for jobs of
// up to MaxQuantity pages instead of the table price, skipping discount
// tiers for those jobs.
type SmallJobOverride struct {
	MaxQuantity   int
	FlatUnitPrice decimal.Decimal
}

// Policy is the configurable pricing behavior. The historical shop rules
// disagreed on discount percentages, so the schedule is injected here
// rather than hardcoded in the engine.
type Policy struct {
	Tiers       []DiscountTier
	MaxQuantity int
	SmallJob    *SmallJobOverride
}

// DefaultPolicy is the canonical schedule: 10% from 100 pages, 15% from
// 500, 20% from 1000, jobs capped at 10 000 pages, no small-job override.
func DefaultPolicy() Policy {
	rate := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return Policy{
		Tiers: []DiscountTier{
			{MinQuantity: 1000, Rate: rate("0.20")},
			{MinQuantity: 500, Rate: rate("0.15")},
			{MinQuantity: 100, Rate: rate("0.10")},
		},
		MaxQuantity: 10000,
	}
}

// DiscountRate returns the rate for the highest tier the quantity reaches,
// or zero when no tier applies.
func (p Policy) DiscountRate(quantity int) decimal.Decimal {
	best := decimal.Zero
	bestMin := -1
	for _, tier := range p.Tiers {
		if quantity >= tier.MinQuantity && tier.MinQuantity > bestMin {
			best = tier.Rate
			bestMin = tier.MinQuantity
		}
	}
	return best
}

type FailureKind int

const (
	FailureMissingField FailureKind = iota
	FailureInvalidQuantity
	FailureQuantityTooLarge
	FailurePriceNotFound
)

func (k FailureKind) String() string {
	switch k {
	case FailureMissingField:
		return "missing_field"
	case FailureInvalidQuantity:
		return "invalid_quantity"
	case FailureQuantityTooLarge:
		return "quantity_too_large"
	case FailurePriceNotFound:
		return "price_not_found"
	default:
		return "unknown"
	}
}

// QuoteError is the typed failure side of a quote. For FailurePriceNotFound
// it carries the combinations that do have a positive price, so the caller
// can show the customer what can be ordered.
type QuoteError struct {
	Kind      FailureKind
	Available []Entry
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote failed: %s", e.Kind)
}

// Quote is the successful pricing breakdown. All amounts are exact
// decimals; rounding to 2 places happens only when formatting a reply.
type Quote struct {
	Request        PriceRequest
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountRate   decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
}

// ComputeQuote prices one request against a table snapshot under the given
// policy. Validation runs before the lookup: quantity must be positive and
// within the policy ceiling.
func ComputeQuote(req PriceRequest, table *Table, policy Policy) (Quote, error) {
	if req.Size == "" || req.Color == "" || req.Duplex == "" {
		return Quote{}, &QuoteError{Kind: FailureMissingField}
	}
	if req.Quantity <= 0 {
		return Quote{}, &QuoteError{Kind: FailureInvalidQuantity}
	}
	if policy.MaxQuantity > 0 && req.Quantity > policy.MaxQuantity {
		return Quote{}, &QuoteError{Kind: FailureQuantityTooLarge}
	}

	qty := decimal.NewFromInt(int64(req.Quantity))

	if sj := policy.SmallJob; sj != nil && req.Quantity <= sj.MaxQuantity {
		subtotal := sj.FlatUnitPrice.Mul(qty)
		return Quote{
			Request:        req,
			UnitPrice:      sj.FlatUnitPrice,
			Subtotal:       subtotal,
			DiscountRate:   decimal.Zero,
			DiscountAmount: decimal.Zero,
			FinalPrice:     subtotal,
		}, nil
	}

	unit, ok := table.UnitPrice(ComboKey{Size: req.Size, Color: req.Color, Duplex: req.Duplex})
	if !ok {
		return Quote{}, &QuoteError{Kind: FailurePriceNotFound, Available: table.Available()}
	}

	subtotal := unit.Mul(qty)
	rate := policy.DiscountRate(req.Quantity)
	discount := subtotal.Mul(rate)

	return Quote{
		Request:        req,
		UnitPrice:      unit,
		Subtotal:       subtotal,
		DiscountRate:   rate,
		DiscountAmount: discount,
		FinalPrice:     subtotal.Sub(discount),
	}, nil
}
