package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type notificationPayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	OrderID   string `json:"orderId,omitempty"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	items, err := h.notifications.List(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	payloads := make([]notificationPayload, len(items))
	for i, n := range items {
		payloads[i] = notificationPayload{
			ID:        n.ID,
			Type:      string(n.Type),
			OrderID:   n.OrderID,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "notifications": payloads})
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
