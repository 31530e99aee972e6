package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/order"
)

type orderItemPayload struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderPayload struct {
	ID             string             `json:"id"`
	UserID         string             `json:"userId"`
	Items          []orderItemPayload `json:"items"`
	Subtotal       float64            `json:"subtotal"`
	Total          float64            `json:"total"`
	ShippingFee    float64            `json:"shippingFee"`
	Status         string             `json:"status"`
	CouponCode     string             `json:"couponCode,omitempty"`
	CouponID       string             `json:"couponId,omitempty"`
	CouponDiscount float64            `json:"couponDiscount,omitempty"`
	CreatedAt      string             `json:"createdAt"`
}

func orderToPayload(o *order.Order) orderPayload {
	items := make([]orderItemPayload, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemPayload{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		}
	}

	p := orderPayload{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       items,
		Subtotal:    o.Subtotal.InexactFloat64(),
		Total:       o.Total.InexactFloat64(),
		ShippingFee: o.ShippingFee.InexactFloat64(),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
	if o.Coupon != nil {
		p.CouponCode = o.Coupon.Code
		p.CouponID = o.Coupon.CouponID
		p.CouponDiscount = o.Coupon.Discount.InexactFloat64()
	}
	return p
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.orders.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	payloads := make([]orderPayload, len(orders))
	for i := range orders {
		payloads[i] = orderToPayload(&orders[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "orders": payloads})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "order": orderToPayload(o)})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	to := order.Status(req.Status)
	if !to.Valid() {
		respondFail(w, http.StatusBadRequest, "Unknown order status: "+req.Status)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), to)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "order": orderToPayload(o)})
}

func (h *Handler) applyOrderCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.reconciler.ApplyCoupon(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Coupon applied successfully",
		"discountAmount": res.DiscountAmount.InexactFloat64(),
		"newTotal":       res.NewTotal.InexactFloat64(),
	})
}

func (h *Handler) removeOrderCoupon(w http.ResponseWriter, r *http.Request) {
	res, err := h.reconciler.RemoveCoupon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Coupon removed successfully",
		"newTotal": res.NewTotal.InexactFloat64(),
	})
}
