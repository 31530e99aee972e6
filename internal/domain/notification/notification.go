// Package notification holds staff-facing activity records. Notifications are
// persisted rows only; nothing in this service pushes them anywhere.
package notification

import (
	"context"
	"time"
)

// Type categorizes a notification for the dashboard.
type Type string

const (
	// TypeOrderStatus marks a notification created by an order status change.
	TypeOrderStatus Type = "order_status"
)

// Notification is one dashboard activity entry.
type Notification struct {
	ID        string
	Type      Type
	OrderID   string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// Repository defines persistence operations for notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}
