package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator decides whether a coupon code applies to an order amount and
// computes the discount. userID may be empty for anonymous callers, in which
// case the per-user limit is not checked.
type Validator interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal, userID string) (*Quote, error)
}

// RepoValidator implements Validator against a coupon Repository and a
// UsageCounter. It writes nothing: redemption history is derived by counting
// orders, and the validator only snapshots those counts.
type RepoValidator struct {
	repo  Finder
	usage UsageCounter
	now   func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given repositories.
func NewRepoValidator(repo Finder, usage UsageCounter) *RepoValidator {
	return &RepoValidator{repo: repo, usage: usage, now: time.Now}
}

// WithClock replaces the time source. Intended for tests of the validity
// window boundaries.
func (v *RepoValidator) WithClock(now func() time.Time) *RepoValidator {
	v.now = now
	return v
}

// Validate runs the eligibility checks in a fixed order, short-circuiting on
// the first failure so each rejection carries a single specific reason:
// existence, active toggle, validity window, minimum order amount, total usage
// limit, per-user limit. On success it returns the coupon and the unrounded
// discount amount.
func (v *RepoValidator) Validate(ctx context.Context, code string, orderAmount decimal.Decimal, userID string) (*Quote, error) {
	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if !c.Active {
		return nil, ErrInactive
	}

	now := v.now()
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return nil, &NotYetValidError{From: c.ValidFrom}
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return nil, ErrExpired
	}

	// Inclusive boundary: an order amount equal to the minimum passes.
	if orderAmount.LessThan(c.MinOrderAmount) {
		return nil, &MinOrderNotMetError{Required: c.MinOrderAmount, Actual: orderAmount}
	}

	if c.UsageLimit > 0 {
		used, err := v.usage.CountRedemptions(ctx, c.ID)
		if err != nil {
			return nil, errors.Wrap(err, "count redemptions")
		}
		if used >= c.UsageLimit {
			return nil, ErrUsageLimitReached
		}
	}

	if userID != "" && c.PerUserLimit > 0 {
		used, err := v.usage.CountRedemptionsByUser(ctx, c.ID, userID)
		if err != nil {
			return nil, errors.Wrap(err, "count redemptions by user")
		}
		if used >= c.PerUserLimit {
			return nil, &PerUserLimitError{Limit: c.PerUserLimit}
		}
	}

	discount, err := computeDiscount(c, orderAmount)
	if err != nil {
		return nil, err
	}

	return &Quote{Coupon: c, Discount: discount}, nil
}
