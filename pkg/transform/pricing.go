package transform

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice reads a feed price. A comma decimal separator is accepted.
// Empty, malformed and negative values become zero.
func ParsePrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatPrice renders a price with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// OutletPolicy computes the selling price of an outlet item.
type OutletPolicy interface {
	OutletPrice(retail, wholesale decimal.Decimal) decimal.Decimal
}

// Tier applies Multiplier to the wholesale price when the wholesale/retail
// ratio is below Below.
type Tier struct {
	Below      decimal.Decimal
	Multiplier decimal.Decimal
}

// TieredOutlet prices outlet items as a markup on wholesale chosen by the
// cost ratio, capped at a fraction of retail. Without a wholesale price the
// cap alone is used.
type TieredOutlet struct {
	// Tiers are checked in order; the first matching one wins.
	Tiers []Tier

	// Fallback is the multiplier when no tier matches.
	Fallback decimal.Decimal

	// Cap is the largest allowed fraction of retail.
	Cap decimal.Decimal
}

// DefaultOutletPolicy returns the outlet pricing table: markups of 2.5, 2.2,
// 2.0 and 1.8 for cost ratios below 20%, 30%, 40% and above, never more
// than 70% of retail.
func DefaultOutletPolicy() TieredOutlet {
	return TieredOutlet{
		Tiers: []Tier{
			{Below: decimal.RequireFromString("0.20"), Multiplier: decimal.RequireFromString("2.5")},
			{Below: decimal.RequireFromString("0.30"), Multiplier: decimal.RequireFromString("2.2")},
			{Below: decimal.RequireFromString("0.40"), Multiplier: decimal.RequireFromString("2.0")},
		},
		Fallback: decimal.RequireFromString("1.8"),
		Cap:      decimal.RequireFromString("0.70"),
	}
}

// OutletPrice implements OutletPolicy.
func (p TieredOutlet) OutletPrice(retail, wholesale decimal.Decimal) decimal.Decimal {
	ceiling := retail.Mul(p.Cap).Round(2)
	if !wholesale.IsPositive() || !retail.IsPositive() {
		return ceiling
	}

	ratio := wholesale.Div(retail)
	multiplier := p.Fallback
	for _, t := range p.Tiers {
		if ratio.LessThan(t.Below) {
			multiplier = t.Multiplier
			break
		}
	}

	price := wholesale.Mul(multiplier).Round(2)
	return decimal.Min(price, ceiling)
}

// isZero reports whether a formatted price is zero.
func isZero(price string) bool {
	d, err := decimal.NewFromString(price)
	return err != nil || !d.IsPositive()
}
