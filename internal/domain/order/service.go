package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/notification"
)

// Service covers the staff order-management surface: listing, lookup, and
// status transitions. Cancelling an order restocks its items; every
// transition leaves a notification row for the dashboard.
type Service struct {
	orders        Repository
	notifications notification.Repository
	lg            *zap.Logger
}

// NewService creates an order Service.
func NewService(orders Repository, notifications notification.Repository, lg *zap.Logger) *Service {
	return &Service{orders: orders, notifications: notifications, lg: lg}
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns orders newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.List(ctx, limit, offset)
}

// UpdateStatus moves an order through the fulfilment state machine. The
// transition to Cancelled runs as one transaction together with the restock
// of the order's items.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to) {
		return nil, &InvalidTransitionError{From: o.Status, To: to}
	}

	if to == StatusCancelled {
		if err := s.orders.CancelAndRestock(ctx, o); err != nil {
			return nil, errors.Wrap(err, "cancel order")
		}
	} else {
		if err := s.orders.UpdateStatus(ctx, o.ID, to); err != nil {
			return nil, errors.Wrap(err, "update order status")
		}
	}

	from := o.Status
	o.Status = to

	// The transition is already committed; a failed notification insert must
	// not surface as a failed status change.
	n := &notification.Notification{
		ID:      uuid.New().String(),
		Type:    notification.TypeOrderStatus,
		OrderID: o.ID,
		Message: fmt.Sprintf("Order %s moved from %s to %s", o.ID, from, to),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.lg.Warn("create status notification",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}

	return o, nil
}
