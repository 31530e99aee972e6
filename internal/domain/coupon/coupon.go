package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the order amount, optionally
	// capped by MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a fixed amount, never exceeding the order amount.
	DiscountFixed DiscountType = "fixed"
)

// Sentinel rejection errors. Error() strings are what staff and customers see,
// so the wording is part of the contract.
var (
	// ErrNotFound is returned when no coupon exists for a code.
	ErrNotFound = errors.New("Invalid coupon code")
	// ErrInactive is returned when the administrative toggle is off,
	// regardless of the date window.
	ErrInactive = errors.New("This coupon is not active")
	// ErrExpired is returned when the current time is past ValidUntil.
	ErrExpired = errors.New("This coupon has expired")
	// ErrUsageLimitReached is returned when total redemptions across all
	// customers have reached UsageLimit.
	ErrUsageLimitReached = errors.New("This coupon has reached its usage limit")
)

// NotYetValidError is returned when the current time is before ValidFrom.
type NotYetValidError struct {
	From time.Time
}

func (e *NotYetValidError) Error() string {
	return fmt.Sprintf("This coupon is valid from %s", e.From.Format("Jan 2, 2006"))
}

// MinOrderNotMetError is returned when the order amount is below the coupon's
// minimum. Callers can branch on the structured amounts instead of the message.
type MinOrderNotMetError struct {
	Required decimal.Decimal
	Actual   decimal.Decimal
}

func (e *MinOrderNotMetError) Error() string {
	return fmt.Sprintf("Minimum order amount of %s required", e.Required)
}

// PerUserLimitError is returned when one customer has already redeemed the
// coupon PerUserLimit times.
type PerUserLimitError struct {
	Limit int
}

func (e *PerUserLimitError) Error() string {
	return fmt.Sprintf("You've already used this coupon %d time(s)", e.Limit)
}

// Coupon is a staff-managed discount rule. The validation path only reads it;
// redemption counts are derived by counting orders, not stored on the coupon.
type Coupon struct {
	ID             string
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	MaxDiscount    decimal.Decimal // percentage cap; zero means uncapped
	MinOrderAmount decimal.Decimal
	ValidFrom      time.Time
	ValidUntil     time.Time
	Active         bool
	UsageLimit     int // total redemptions; zero means unlimited
	PerUserLimit   int // redemptions per customer; zero means unlimited
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Quote is a successful validation verdict: the matched coupon and the
// discount it grants for the quoted order amount. The amount is unrounded;
// rounding happens once, when a discount is persisted onto an order.
type Quote struct {
	Coupon   *Coupon
	Discount decimal.Decimal
}

// Finder resolves a coupon by exact, case-sensitive code match. It is the
// only repository capability the validator needs.
type Finder interface {
	// FindByCode returns ErrNotFound when no coupon exists for the code.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// Repository provides lookup and mutation of coupons.
type Repository interface {
	Finder
	GetByID(ctx context.Context, id string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// UsageCounter reports how many orders reference a coupon. Counts are
// point-in-time snapshots over the orders table; concurrent redemptions can
// each observe a count below the limit before either order is written.
type UsageCounter interface {
	// CountRedemptions returns the number of orders carrying the coupon.
	CountRedemptions(ctx context.Context, couponID string) (int, error)
	// CountRedemptionsByUser returns the number of such orders placed by one customer.
	CountRedemptionsByUser(ctx context.Context, couponID, userID string) (int, error)
}
