// Package handler exposes the admin API over HTTP. Handlers decode requests,
// delegate to the domain services, and render results as a
// {success, message, ...} JSON envelope the dashboard consumes verbatim.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/notification"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/order"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/product"
)

// genericFailure is what callers see when the backend itself failed. Business
// rejections carry their own reason; infrastructure errors never leak detail,
// so a caller cannot mistake an outage for a rule rejection.
const genericFailure = "Something went wrong. Please try again."

// Handler wires the domain services to HTTP routes.
type Handler struct {
	coupons       coupon.Repository
	validator     coupon.Validator
	reconciler    *order.Reconciler
	orders        *order.Service
	products      product.Repository
	notifications notification.Repository
}

// New constructs a Handler with the required domain dependencies.
func New(
	coupons coupon.Repository,
	validator coupon.Validator,
	reconciler *order.Reconciler,
	orders *order.Service,
	products product.Repository,
	notifications notification.Repository,
) *Handler {
	return &Handler{
		coupons:       coupons,
		validator:     validator,
		reconciler:    reconciler,
		orders:        orders,
		products:      products,
		notifications: notifications,
	}
}

// Routes returns the chi router for the /api subtree. Authentication is
// applied by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", h.listCoupons)
		r.Post("/", h.createCoupon)
		r.Post("/validate", h.validateCoupon)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCoupon)
			r.Put("/", h.updateCoupon)
			r.Delete("/", h.deleteCoupon)
			r.Patch("/active", h.setCouponActive)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Patch("/status", h.updateOrderStatus)
			r.Post("/coupon", h.applyOrderCoupon)
			r.Delete("/coupon", h.removeOrderCoupon)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getProduct)
			r.Put("/", h.updateProduct)
			r.Delete("/", h.deleteProduct)
		})
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.listNotifications)
		r.Post("/{id}/read", h.markNotificationRead)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// failResponse is the envelope for every unsuccessful operation.
type failResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondFail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, failResponse{Success: false, Message: message})
}

// respondError maps a domain error to an HTTP response. Business rejections
// render their message; anything else is logged and hidden behind a generic
// failure.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch status, ok := rejectionStatus(err); {
	case ok:
		respondFail(w, status, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondFail(w, http.StatusInternalServerError, genericFailure)
	}
}

// rejectionStatus classifies business-rule rejections. The bool result is
// false for infrastructure errors.
func rejectionStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrUsageLimitReached),
		errors.Is(err, order.ErrCouponAlreadyApplied),
		errors.Is(err, order.ErrNoCouponApplied):
		return http.StatusBadRequest, true
	}

	var (
		notYet   *coupon.NotYetValidError
		minOrder *coupon.MinOrderNotMetError
		perUser  *coupon.PerUserLimitError
		locked   *order.CouponLockedError
		badMove  *order.InvalidTransitionError
	)
	if errors.As(err, &notYet) ||
		errors.As(err, &minOrder) ||
		errors.As(err, &perUser) ||
		errors.As(err, &locked) ||
		errors.As(err, &badMove) {
		return http.StatusBadRequest, true
	}

	return 0, false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
