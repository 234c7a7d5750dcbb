package variants

import (
	"github.com/shopspring/decimal"
)

// Rounding decides how a fractional discount percentage becomes an integer.
type Rounding int

const (
	// RoundNearest rounds half away from zero: 16.67% shows as 17%.
	RoundNearest Rounding = iota
	// RoundDown truncates: 16.67% shows as 16%.
	RoundDown
)

var hundred = decimal.NewFromInt(100)

// PriceView is what a product card prints next to the add button.
type PriceView struct {
	Current            decimal.Decimal
	CompareAt          decimal.NullDecimal
	DiscountPercentage *int
}

// NewPriceView derives the discount from current and compareAt. There is no
// discount unless compareAt is set, positive and above current.
func NewPriceView(current decimal.Decimal, compareAt decimal.NullDecimal, rounding Rounding) PriceView {
	view := PriceView{Current: current, CompareAt: compareAt}
	if !compareAt.Valid || !compareAt.Decimal.IsPositive() || !compareAt.Decimal.GreaterThan(current) {
		return view
	}

	pct := decimal.NewFromInt(1).Sub(current.Div(compareAt.Decimal)).Mul(hundred)
	switch rounding {
	case RoundDown:
		pct = pct.Truncate(0)
	default:
		pct = pct.Round(0)
	}
	n := int(pct.IntPart())
	view.DiscountPercentage = &n
	return view
}

func (p PriceView) HasDiscount() bool {
	return p.DiscountPercentage != nil
}
