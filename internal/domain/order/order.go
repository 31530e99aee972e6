package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusAccepted   Status = "Accepted"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusProcessing: {StatusAccepted: true, StatusCancelled: true},
	StatusAccepted:   {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether the status permits no further changes to the order.
// Coupon mutations are gated on this as well as staff status actions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

var (
	// ErrNotFound is returned when an order id resolves to no record.
	ErrNotFound = errors.New("Order not found")
	// ErrCouponAlreadyApplied is returned when applying a coupon to an order
	// that already carries one. No stacking.
	ErrCouponAlreadyApplied = errors.New("Order already has a coupon applied")
	// ErrNoCouponApplied is returned when removing a coupon from an order
	// that has none.
	ErrNoCouponApplied = errors.New("Order does not have a coupon applied")
)

// CouponLockedError is returned when a coupon mutation is attempted on an
// order in a terminal status.
type CouponLockedError struct {
	Action string // "apply" or "remove"
	Status Status
}

func (e *CouponLockedError) Error() string {
	preposition := "to"
	if e.Action == "remove" {
		preposition = "from"
	}
	return fmt.Sprintf("Cannot %s coupon %s order with status: %s", e.Action, preposition, e.Status)
}

// InvalidTransitionError is returned for a status change the state machine
// does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot change order status from %s to %s", e.From, e.To)
}

// AppliedCoupon is the discount currently attached to an order. The three
// values always travel together: an order either has all of them or none,
// which rules out partially-applied states by construction.
type AppliedCoupon struct {
	Code     string
	CouponID string
	Discount decimal.Decimal
}

// Item is a purchased line item. Prices are captured at order creation.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is a purchase record. Subtotal is fixed at creation; Total is the
// payable amount and moves only when a coupon is applied or removed.
type Order struct {
	ID          string
	UserID      string
	Items       []Item
	Subtotal    decimal.Decimal
	Total       decimal.Decimal
	ShippingFee decimal.Decimal
	Status      Status
	Coupon      *AppliedCoupon
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for orders. SetCoupon and
// UpdateStatus are single-row updates and rely on the database's row-level
// atomicity; no cross-row coordination happens here.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, error)
	// SetCoupon writes the applied coupon and the recomputed total in one
	// statement. A nil coupon clears the discount fields.
	SetCoupon(ctx context.Context, orderID string, c *AppliedCoupon, newTotal decimal.Decimal) error
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	// CancelAndRestock marks the order cancelled and returns its items to
	// product stock inside a single transaction.
	CancelAndRestock(ctx context.Context, o *Order) error
}
