package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/product"
)

type productPayload struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Active   bool    `json:"active"`
}

func productToPayload(p *product.Product) productPayload {
	return productPayload{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price.InexactFloat64(),
		Stock:    p.Stock,
		Active:   p.Active,
	}
}

func (p *productPayload) toDomain() (*product.Product, string) {
	if p.Name == "" {
		return nil, "Product name is required"
	}
	if p.Price < 0 {
		return nil, "Price cannot be negative"
	}
	if p.Stock < 0 {
		return nil, "Stock cannot be negative"
	}
	return &product.Product{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    decimal.NewFromFloat(p.Price),
		Stock:    p.Stock,
		Active:   p.Active,
	}, ""
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	payloads := make([]productPayload, len(products))
	for i := range products {
		payloads[i] = productToPayload(&products[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "products": payloads})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "product": productToPayload(p)})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	p, msg := payload.toDomain()
	if msg != "" {
		respondFail(w, http.StatusBadRequest, msg)
		return
	}
	p.ID = uuid.New().String()

	if err := h.products.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "product": productToPayload(p)})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	p, msg := payload.toDomain()
	if msg != "" {
		respondFail(w, http.StatusBadRequest, msg)
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "product": productToPayload(p)})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
