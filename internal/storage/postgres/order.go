package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/order"
)

const (
	selectOrderColumns = `id, user_id, items, subtotal, total, shipping_fee,
		status, coupon_code, coupon_id, coupon_discount, created_at, updated_at`

	getOrderByIDSQL = `SELECT ` + selectOrderColumns + ` FROM orders WHERE id = $1`
	listOrdersSQL   = `SELECT ` + selectOrderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	// The coupon fields and the total move together in one statement, so a
	// reader can never observe a half-applied discount.
	setOrderCouponSQL = `UPDATE orders SET coupon_code = $2, coupon_id = $3,
		coupon_discount = $4, total = $5, updated_at = now() WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
	restockProductSQL    = `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`

	countRedemptionsSQL       = `SELECT COUNT(*) FROM orders WHERE coupon_id = $1`
	countRedemptionsByUserSQL = `SELECT COUNT(*) FROM orders WHERE coupon_id = $1 AND user_id = $2`
)

var (
	_ order.Repository    = (*OrderRepository)(nil)
	_ coupon.UsageCounter = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL. It also
// implements coupon.UsageCounter: redemption counts are derived by counting
// orders that reference a coupon, never kept as a counter column.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID fetches a single order.
// Returns order.ErrNotFound when the id resolves to no record.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// SetCoupon writes the applied coupon and recomputed total atomically on one
// order row. A nil coupon clears all three discount fields.
func (r *OrderRepository) SetCoupon(ctx context.Context, orderID string, c *order.AppliedCoupon, newTotal decimal.Decimal) error {
	var (
		code     *string
		couponID *string
		discount decimal.NullDecimal
	)
	if c != nil {
		code = &c.Code
		couponID = &c.CouponID
		discount = decimal.NullDecimal{Decimal: c.Discount, Valid: true}
	}

	tag, err := r.pool.Exec(ctx, setOrderCouponSQL, orderID, code, couponID, discount, newTotal)
	if err != nil {
		return fmt.Errorf("setting coupon on order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateStatus writes the new fulfilment status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, orderID, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// CancelAndRestock marks the order cancelled and returns its items to product
// stock in a single transaction, so stock never drifts when cancellation
// fails halfway.
func (r *OrderRepository) CancelAndRestock(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning cancel transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, updateOrderStatusSQL, o.ID, string(order.StatusCancelled))
	if err != nil {
		return fmt.Errorf("cancelling order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, restockProductSQL, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("restocking product %q: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing cancel of order %q: %w", o.ID, err)
	}
	return nil
}

// CountRedemptions counts orders that redeemed the coupon.
func (r *OrderRepository) CountRedemptions(ctx context.Context, couponID string) (int, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countRedemptionsSQL, couponID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting redemptions of coupon %q: %w", couponID, err)
	}
	return int(n), nil
}

// CountRedemptionsByUser counts orders by one customer that redeemed the coupon.
func (r *OrderRepository) CountRedemptionsByUser(ctx context.Context, couponID, userID string) (int, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countRedemptionsByUserSQL, couponID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting redemptions of coupon %q by user %q: %w", couponID, userID, err)
	}
	return int(n), nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
		code      *string
		couponID  *string
		discount  decimal.NullDecimal
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &o.Subtotal, &o.Total, &o.ShippingFee,
		&status, &code, &couponID, &discount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
	}

	o.Status = order.Status(status)
	if code != nil && couponID != nil && discount.Valid {
		o.Coupon = &order.AppliedCoupon{
			Code:     *code,
			CouponID: *couponID,
			Discount: discount.Decimal,
		}
	}
	return o, nil
}
