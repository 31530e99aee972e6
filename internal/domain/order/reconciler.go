package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
)

// Reconciler applies and removes validated discounts on orders, recomputing
// the payable total. Each operation writes exactly one order row and touches
// nothing else: usage counts are derived from orders, so there is no counter
// to bump.
type Reconciler struct {
	orders    Repository
	validator coupon.Validator
}

// NewReconciler creates a Reconciler with the given order repository and
// coupon validator.
func NewReconciler(orders Repository, validator coupon.Validator) *Reconciler {
	return &Reconciler{orders: orders, validator: validator}
}

// ApplyResult reports the outcome of a successful ApplyCoupon.
type ApplyResult struct {
	DiscountAmount decimal.Decimal
	NewTotal       decimal.Decimal
}

// RemoveResult reports the outcome of a successful RemoveCoupon.
type RemoveResult struct {
	NewTotal decimal.Decimal
}

// ApplyCoupon validates the code against the order's subtotal and customer,
// then persists the discount and the reduced total. Orders in a terminal
// status and orders that already carry a coupon are rejected before
// validation runs.
func (r *Reconciler) ApplyCoupon(ctx context.Context, orderID, code string) (*ApplyResult, error) {
	o, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Coupon != nil {
		return nil, ErrCouponAlreadyApplied
	}
	if o.Status.Terminal() {
		return nil, &CouponLockedError{Action: "apply", Status: o.Status}
	}

	quote, err := r.validator.Validate(ctx, code, o.Subtotal, o.UserID)
	if err != nil {
		return nil, err
	}

	// The validator returns full precision; round once here, at the point
	// of persistence.
	discount := quote.Discount.Round(2)
	newTotal := o.Total.Sub(discount)

	applied := &AppliedCoupon{
		Code:     quote.Coupon.Code,
		CouponID: quote.Coupon.ID,
		Discount: discount,
	}
	if err := r.orders.SetCoupon(ctx, o.ID, applied, newTotal); err != nil {
		return nil, errors.Wrap(err, "persist coupon")
	}

	return &ApplyResult{DiscountAmount: discount, NewTotal: newTotal}, nil
}

// RemoveCoupon clears the order's discount and restores the total by the
// recorded discount amount.
func (r *Reconciler) RemoveCoupon(ctx context.Context, orderID string) (*RemoveResult, error) {
	o, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Coupon == nil {
		return nil, ErrNoCouponApplied
	}
	if o.Status.Terminal() {
		return nil, &CouponLockedError{Action: "remove", Status: o.Status}
	}

	newTotal := o.Total.Add(o.Coupon.Discount)
	if err := r.orders.SetCoupon(ctx, o.ID, nil, newTotal); err != nil {
		return nil, errors.Wrap(err, "clear coupon")
	}

	return &RemoveResult{NewTotal: newTotal}, nil
}
