package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
)

// couponPayload is the staff-facing coupon representation for both requests
// and responses. Monetary fields travel as JSON numbers.
type couponPayload struct {
	ID             string  `json:"id,omitempty"`
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	MaxDiscount    float64 `json:"maxDiscount,omitempty"`
	MinOrderAmount float64 `json:"minOrderAmount"`
	ValidFrom      string  `json:"validFrom"`
	ValidUntil     string  `json:"validUntil"`
	Active         bool    `json:"active"`
	UsageLimit     int     `json:"usageLimit,omitempty"`
	PerUserLimit   int     `json:"perUserLimit,omitempty"`
	Description    string  `json:"description,omitempty"`
}

func couponToPayload(c *coupon.Coupon) couponPayload {
	return couponPayload{
		ID:             c.ID,
		Code:           c.Code,
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue.InexactFloat64(),
		MaxDiscount:    c.MaxDiscount.InexactFloat64(),
		MinOrderAmount: c.MinOrderAmount.InexactFloat64(),
		ValidFrom:      c.ValidFrom.Format(time.RFC3339),
		ValidUntil:     c.ValidUntil.Format(time.RFC3339),
		Active:         c.Active,
		UsageLimit:     c.UsageLimit,
		PerUserLimit:   c.PerUserLimit,
		Description:    c.Description,
	}
}

func (p *couponPayload) toDomain() (*coupon.Coupon, string) {
	if p.Code == "" {
		return nil, "Coupon code is required"
	}

	kind := coupon.DiscountType(p.DiscountType)
	if kind != coupon.DiscountPercentage && kind != coupon.DiscountFixed {
		return nil, "Discount type must be percentage or fixed"
	}
	if p.DiscountValue <= 0 {
		return nil, "Discount value must be positive"
	}
	if kind == coupon.DiscountPercentage && p.DiscountValue > 100 {
		return nil, "Percentage discount cannot exceed 100"
	}

	from, err := time.Parse(time.RFC3339, p.ValidFrom)
	if err != nil {
		return nil, "validFrom must be an RFC 3339 timestamp"
	}
	until, err := time.Parse(time.RFC3339, p.ValidUntil)
	if err != nil {
		return nil, "validUntil must be an RFC 3339 timestamp"
	}
	if until.Before(from) {
		return nil, "validUntil must not precede validFrom"
	}

	return &coupon.Coupon{
		ID:             p.ID,
		Code:           p.Code,
		DiscountType:   kind,
		DiscountValue:  decimal.NewFromFloat(p.DiscountValue),
		MaxDiscount:    decimal.NewFromFloat(p.MaxDiscount),
		MinOrderAmount: decimal.NewFromFloat(p.MinOrderAmount),
		ValidFrom:      from,
		ValidUntil:     until,
		Active:         p.Active,
		UsageLimit:     p.UsageLimit,
		PerUserLimit:   p.PerUserLimit,
		Description:    p.Description,
	}, ""
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	payloads := make([]couponPayload, len(coupons))
	for i := range coupons {
		payloads[i] = couponToPayload(&coupons[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "coupons": payloads})
}

func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "coupon": couponToPayload(c)})
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var p couponPayload
	if !decodeBody(w, r, &p) {
		return
	}

	c, msg := p.toDomain()
	if msg != "" {
		respondFail(w, http.StatusBadRequest, msg)
		return
	}
	c.ID = uuid.New().String()

	if err := h.coupons.Create(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "coupon": couponToPayload(c)})
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var p couponPayload
	if !decodeBody(w, r, &p) {
		return
	}

	c, msg := p.toDomain()
	if msg != "" {
		respondFail(w, http.StatusBadRequest, msg)
		return
	}
	c.ID = chi.URLParam(r, "id")

	if err := h.coupons.Update(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "coupon": couponToPayload(c)})
}

func (h *Handler) setCouponActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.coupons.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// validateCoupon quotes a coupon against an order amount without touching any
// order. Rejections come back as valid=false with the rejection reason, so
// the checkout UI can show the message directly.
func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string  `json:"code"`
		OrderAmount float64 `json:"orderAmount"`
		UserID      string  `json:"userId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	quote, err := h.validator.Validate(r.Context(), req.Code, decimal.NewFromFloat(req.OrderAmount), req.UserID)
	if err != nil {
		if _, ok := rejectionStatus(err); ok {
			respondJSON(w, http.StatusOK, map[string]any{
				"valid":   false,
				"message": err.Error(),
			})
			return
		}
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"discount": quote.Discount.Round(2).InexactFloat64(),
		"message":  "Coupon is valid",
	})
}
