package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/satheeshds/facturation/models"
)

var hundred = decimal.NewFromInt(100)

// LineTotal computes the monetary total of one line item.
//
// The base is quantity × price. A percent discount scales the base, an
// absolute discount subtracts a flat amount once (not per unit). The result
// is clamped at zero: no discount, however large, produces a negative line.
func LineTotal(quantity int, price, discount decimal.Decimal, unit string) decimal.Decimal {
	base := price.Mul(decimal.NewFromInt(int64(quantity)))

	var off decimal.Decimal
	switch unit {
	case models.DiscountAbsolute:
		off = discount
	default:
		// Percent is the default unit.
		off = base.Mul(discount).Div(hundred)
	}

	total := base.Sub(off)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
