package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/notification"
)

const (
	insertNotificationSQL = `INSERT INTO notifications (id, type, order_id, message)
		VALUES ($1, $2, $3, $4)`
	listNotificationsSQL = `SELECT id, type, order_id, message, read, created_at
		FROM notifications ORDER BY read, created_at DESC LIMIT $1`
	markNotificationReadSQL = `UPDATE notifications SET read = TRUE WHERE id = $1`
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository backed by PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, insertNotificationSQL, n.ID, string(n.Type), n.OrderID, n.Message)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// List returns notifications, unread first, newest within each group.
func (r *NotificationRepository) List(ctx context.Context, limit int) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx, listNotificationsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.Notification, error) {
		var (
			n       notification.Notification
			kind    string
			orderID *string
		)
		err := row.Scan(&n.ID, &kind, &orderID, &n.Message, &n.Read, &n.CreatedAt)
		n.Type = notification.Type(kind)
		if orderID != nil {
			n.OrderID = *orderID
		}
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return items, nil
}

// MarkRead flags a notification as seen.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, markNotificationReadSQL, id)
	if err != nil {
		return fmt.Errorf("marking notification %q read: %w", id, err)
	}
	return nil
}
