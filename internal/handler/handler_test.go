package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/notification"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/order"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/product"
)

// memCoupons is an in-memory coupon.Repository keyed by id, with exact
// case-sensitive code lookup.
type memCoupons struct {
	byID map[string]*coupon.Coupon
}

func newMemCoupons(coupons ...*coupon.Coupon) *memCoupons {
	m := &memCoupons{byID: make(map[string]*coupon.Coupon)}
	for _, c := range coupons {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCoupons) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	for _, c := range m.byID {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, coupon.ErrNotFound
}

func (m *memCoupons) GetByID(_ context.Context, id string) (*coupon.Coupon, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return c, nil
}

func (m *memCoupons) List(_ context.Context) ([]coupon.Coupon, error) {
	out := make([]coupon.Coupon, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCoupons) Create(_ context.Context, c *coupon.Coupon) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memCoupons) Update(_ context.Context, c *coupon.Coupon) error {
	if _, ok := m.byID[c.ID]; !ok {
		return coupon.ErrNotFound
	}
	m.byID[c.ID] = c
	return nil
}

func (m *memCoupons) SetActive(_ context.Context, id string, active bool) error {
	c, ok := m.byID[id]
	if !ok {
		return coupon.ErrNotFound
	}
	c.Active = active
	return nil
}

func (m *memCoupons) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return coupon.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// memOrders implements order.Repository and coupon.UsageCounter, counting
// redemptions over its own orders the way the SQL layer does.
type memOrders struct {
	byID map[string]*order.Order
}

func newMemOrders(orders ...*order.Order) *memOrders {
	m := &memOrders{byID: make(map[string]*order.Order)}
	for _, o := range orders {
		m.byID[o.ID] = o
	}
	return m
}

func (m *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) List(_ context.Context, _, _ int) ([]order.Order, error) {
	out := make([]order.Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrders) SetCoupon(_ context.Context, orderID string, c *order.AppliedCoupon, newTotal decimal.Decimal) error {
	o := m.byID[orderID]
	o.Coupon = c
	o.Total = newTotal
	return nil
}

func (m *memOrders) UpdateStatus(_ context.Context, orderID string, status order.Status) error {
	m.byID[orderID].Status = status
	return nil
}

func (m *memOrders) CancelAndRestock(_ context.Context, o *order.Order) error {
	m.byID[o.ID].Status = order.StatusCancelled
	return nil
}

func (m *memOrders) CountRedemptions(_ context.Context, couponID string) (int, error) {
	n := 0
	for _, o := range m.byID {
		if o.Coupon != nil && o.Coupon.CouponID == couponID {
			n++
		}
	}
	return n, nil
}

func (m *memOrders) CountRedemptionsByUser(_ context.Context, couponID, userID string) (int, error) {
	n := 0
	for _, o := range m.byID {
		if o.UserID == userID && o.Coupon != nil && o.Coupon.CouponID == couponID {
			n++
		}
	}
	return n, nil
}

type memProducts struct {
	byID map[string]*product.Product
}

func (m *memProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *memProducts) Create(_ context.Context, p *product.Product) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *product.Product) error {
	if _, ok := m.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memNotifications struct {
	rows []notification.Notification
}

func (m *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memNotifications) List(_ context.Context, _ int) ([]notification.Notification, error) {
	return m.rows, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id string) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Read = true
			return nil
		}
	}
	return nil
}

type fixture struct {
	handler http.Handler
	coupons *memCoupons
	orders  *memOrders
}

func newFixture(t *testing.T, coupons []*coupon.Coupon, orders []*order.Order) *fixture {
	t.Helper()

	couponRepo := newMemCoupons(coupons...)
	orderRepo := newMemOrders(orders...)

	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	validator := coupon.NewRepoValidator(couponRepo, orderRepo).
		WithClock(func() time.Time { return fixedNow })

	orderSvc := order.NewService(orderRepo, &memNotifications{}, zaptest.NewLogger(t))
	reconciler := order.NewReconciler(orderRepo, validator)

	h := New(
		couponRepo,
		validator,
		reconciler,
		orderSvc,
		&memProducts{byID: make(map[string]*product.Product)},
		&memNotifications{},
	)
	return &fixture{handler: h.Routes(), coupons: couponRepo, orders: orderRepo}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func save10() *coupon.Coupon {
	return &coupon.Coupon{
		ID:             "c-save10",
		Code:           "SAVE10",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  decimal.NewFromInt(10),
		MaxDiscount:    decimal.NewFromInt(200),
		MinOrderAmount: decimal.NewFromInt(500),
		ValidFrom:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:         true,
	}
}

func processingOrder(id string, total int64) *order.Order {
	return &order.Order{
		ID:       id,
		UserID:   "u1",
		Subtotal: decimal.NewFromInt(total),
		Total:    decimal.NewFromInt(total),
		Status:   order.StatusProcessing,
	}
}

func TestValidateCoupon(t *testing.T) {
	f := newFixture(t, []*coupon.Coupon{save10()}, nil)

	t.Run("valid quote with capped discount", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", map[string]any{
			"code": "SAVE10", "orderAmount": 3000, "userId": "u1",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, 200.0, body["discount"])
		assert.Equal(t, "Coupon is valid", body["message"])
	})

	t.Run("rejection is 200 with valid=false", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", map[string]any{
			"code": "SAVE10", "orderAmount": 300,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "Minimum order amount of 500 required", body["message"])
	})

	t.Run("code match is case sensitive", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", map[string]any{
			"code": "save10", "orderAmount": 3000,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "Invalid coupon code", body["message"])
	})
}

func TestCouponCRUD(t *testing.T) {
	f := newFixture(t, nil, nil)

	t.Run("create validates payload", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/", map[string]any{
			"code":          "",
			"discountType":  "percentage",
			"discountValue": 10,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Coupon code is required", decode(t, rec)["message"])
	})

	t.Run("create rejects unknown discount type", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/", map[string]any{
			"code":          "X",
			"discountType":  "bogo",
			"discountValue": 10,
			"validFrom":     "2025-01-01T00:00:00Z",
			"validUntil":    "2026-01-01T00:00:00Z",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Discount type must be percentage or fixed", decode(t, rec)["message"])
	})

	t.Run("create then fetch", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/", map[string]any{
			"code":          "NEW20",
			"discountType":  "percentage",
			"discountValue": 20,
			"validFrom":     "2025-01-01T00:00:00Z",
			"validUntil":    "2026-01-01T00:00:00Z",
			"active":        true,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decode(t, rec)
		created := body["coupon"].(map[string]any)
		id := created["id"].(string)
		require.NotEmpty(t, id)

		rec = f.do(t, http.MethodGet, "/coupons/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode(t, rec)["coupon"].(map[string]any)
		assert.Equal(t, "NEW20", got["code"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/coupons/nope", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Invalid coupon code", decode(t, rec)["message"])
	})

	t.Run("toggle active", func(t *testing.T) {
		c := save10()
		f.coupons.byID[c.ID] = c

		rec := f.do(t, http.MethodPatch, "/coupons/"+c.ID+"/active", map[string]any{"active": false})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, f.coupons.byID[c.ID].Active)
	})
}

func TestApplyOrderCoupon(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t,
			[]*coupon.Coupon{save10()},
			[]*order.Order{processingOrder("o1", 3000)},
		)

		rec := f.do(t, http.MethodPost, "/orders/o1/coupon", map[string]any{"code": "SAVE10"})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Coupon applied successfully", body["message"])
		assert.Equal(t, 200.0, body["discountAmount"])
		assert.Equal(t, 2800.0, body["newTotal"])

		stored := f.orders.byID["o1"]
		require.NotNil(t, stored.Coupon)
		assert.Equal(t, "SAVE10", stored.Coupon.Code)
	})

	t.Run("double apply is 400", func(t *testing.T) {
		f := newFixture(t,
			[]*coupon.Coupon{save10()},
			[]*order.Order{processingOrder("o1", 3000)},
		)

		rec := f.do(t, http.MethodPost, "/orders/o1/coupon", map[string]any{"code": "SAVE10"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = f.do(t, http.MethodPost, "/orders/o1/coupon", map[string]any{"code": "SAVE10"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Order already has a coupon applied", decode(t, rec)["message"])
	})

	t.Run("terminal order is 400", func(t *testing.T) {
		o := processingOrder("o1", 3000)
		o.Status = order.StatusDelivered
		f := newFixture(t, []*coupon.Coupon{save10()}, []*order.Order{o})

		rec := f.do(t, http.MethodPost, "/orders/o1/coupon", map[string]any{"code": "SAVE10"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot apply coupon to order with status: Delivered", decode(t, rec)["message"])
	})

	t.Run("unknown order is 404", func(t *testing.T) {
		f := newFixture(t, []*coupon.Coupon{save10()}, nil)

		rec := f.do(t, http.MethodPost, "/orders/nope/coupon", map[string]any{"code": "SAVE10"})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decode(t, rec)["message"])
	})

	t.Run("validator rejection surfaces its message", func(t *testing.T) {
		f := newFixture(t,
			[]*coupon.Coupon{save10()},
			[]*order.Order{processingOrder("o1", 300)},
		)

		rec := f.do(t, http.MethodPost, "/orders/o1/coupon", map[string]any{"code": "SAVE10"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Minimum order amount of 500 required", decode(t, rec)["message"])
	})
}

func TestRemoveOrderCoupon(t *testing.T) {
	f := newFixture(t,
		[]*coupon.Coupon{save10()},
		[]*order.Order{processingOrder("o1", 3000)},
	)

	rec := f.do(t, http.MethodDelete, "/orders/o1/coupon", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order does not have a coupon applied", decode(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/orders/o1/coupon", map[string]any{"code": "SAVE10"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/orders/o1/coupon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Coupon removed successfully", body["message"])
	assert.Equal(t, 3000.0, body["newTotal"])
	assert.Nil(t, f.orders.byID["o1"].Coupon)
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		f := newFixture(t, nil, []*order.Order{processingOrder("o1", 1000)})

		rec := f.do(t, http.MethodPatch, "/orders/o1/status", map[string]any{"status": "Accepted"})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode(t, rec)["order"].(map[string]any)
		assert.Equal(t, "Accepted", got["status"])
	})

	t.Run("unknown status value", func(t *testing.T) {
		f := newFixture(t, nil, []*order.Order{processingOrder("o1", 1000)})

		rec := f.do(t, http.MethodPatch, "/orders/o1/status", map[string]any{"status": "Refunded"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unknown order status: Refunded", decode(t, rec)["message"])
	})

	t.Run("disallowed transition", func(t *testing.T) {
		f := newFixture(t, nil, []*order.Order{processingOrder("o1", 1000)})

		rec := f.do(t, http.MethodPatch, "/orders/o1/status", map[string]any{"status": "Delivered"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot change order status from Processing to Delivered", decode(t, rec)["message"])
	})
}

func TestPerUserLimitOverOrders(t *testing.T) {
	// Redemption counts are derived from orders, so an existing order carrying
	// the coupon blocks the same customer from redeeming again.
	c := save10()
	c.PerUserLimit = 1

	redeemed := processingOrder("o1", 3000)
	redeemed.Coupon = &order.AppliedCoupon{Code: "SAVE10", CouponID: c.ID, Discount: decimal.NewFromInt(200)}

	f := newFixture(t,
		[]*coupon.Coupon{c},
		[]*order.Order{redeemed, processingOrder("o2", 3000)},
	)

	rec := f.do(t, http.MethodPost, "/orders/o2/coupon", map[string]any{"code": "SAVE10"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You've already used this coupon 1 time(s)", decode(t, rec)["message"])
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/coupons/validate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["message"])
}
