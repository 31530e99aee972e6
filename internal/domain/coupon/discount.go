package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// computeDiscount calculates the discount a coupon grants for the given order
// amount. No rounding is performed here: the full-precision amount is handed
// to whoever persists it, so the value is rounded exactly once.
func computeDiscount(c *Coupon, orderAmount decimal.Decimal) (decimal.Decimal, error) {
	switch c.DiscountType {
	case DiscountPercentage:
		amount := orderAmount.Mul(c.DiscountValue).Div(hundred)
		if c.MaxDiscount.IsPositive() && amount.GreaterThan(c.MaxDiscount) {
			amount = c.MaxDiscount
		}
		return amount, nil
	case DiscountFixed:
		// A fixed discount never exceeds the order amount, so the total
		// cannot go negative.
		return decimal.Min(c.DiscountValue, orderAmount), nil
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", c.DiscountType)
	}
}
