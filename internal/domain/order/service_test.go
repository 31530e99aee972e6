package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/notification"
)

type memNotifications struct {
	created []*notification.Notification
	err     error
}

func (m *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, n)
	return nil
}

func (m *memNotifications) List(_ context.Context, _ int) ([]notification.Notification, error) {
	return nil, nil
}

func (m *memNotifications) MarkRead(_ context.Context, _ string) error {
	return nil
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("allowed transition persists and notifies", func(t *testing.T) {
		repo := newMemOrders(testOrder("o1", StatusProcessing))
		notifs := &memNotifications{}
		svc := NewService(repo, notifs, zaptest.NewLogger(t))

		got, err := svc.UpdateStatus(context.Background(), "o1", StatusAccepted)
		require.NoError(t, err)

		assert.Equal(t, StatusAccepted, got.Status)
		assert.Equal(t, StatusAccepted, repo.orders["o1"].Status)

		require.Len(t, notifs.created, 1)
		assert.Equal(t, notification.TypeOrderStatus, notifs.created[0].Type)
		assert.Equal(t, "o1", notifs.created[0].OrderID)
		assert.Contains(t, notifs.created[0].Message, "Processing")
		assert.Contains(t, notifs.created[0].Message, "Accepted")
	})

	t.Run("cancellation restocks in one call", func(t *testing.T) {
		repo := newMemOrders(testOrder("o1", StatusProcessing))
		svc := NewService(repo, &memNotifications{}, zaptest.NewLogger(t))

		got, err := svc.UpdateStatus(context.Background(), "o1", StatusCancelled)
		require.NoError(t, err)

		assert.Equal(t, StatusCancelled, got.Status)
		assert.Equal(t, StatusCancelled, repo.orders["o1"].Status)
	})

	t.Run("disallowed transition rejected", func(t *testing.T) {
		repo := newMemOrders(testOrder("o1", StatusDelivered))
		svc := NewService(repo, &memNotifications{}, zaptest.NewLogger(t))

		_, err := svc.UpdateStatus(context.Background(), "o1", StatusShipped)

		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Cannot change order status from Delivered to Shipped", err.Error())
	})

	t.Run("notification failure does not fail the transition", func(t *testing.T) {
		repo := newMemOrders(testOrder("o1", StatusAccepted))
		notifs := &memNotifications{err: errors.New("db down")}
		svc := NewService(repo, notifs, zaptest.NewLogger(t))

		got, err := svc.UpdateStatus(context.Background(), "o1", StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, got.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := NewService(newMemOrders(), &memNotifications{}, zaptest.NewLogger(t))

		_, err := svc.UpdateStatus(context.Background(), "missing", StatusAccepted)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_List_ClampsLimit(t *testing.T) {
	repo := &limitSpy{}
	svc := NewService(repo, &memNotifications{}, zaptest.NewLogger(t))

	for _, tc := range []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-5, -3, 50, 0},
		{101, 10, 50, 10},
		{25, 5, 25, 5},
	} {
		_, err := svc.List(context.Background(), tc.limit, tc.offset)
		require.NoError(t, err)
		assert.Equal(t, tc.wantLimit, repo.limit)
		assert.Equal(t, tc.wantOffset, repo.offset)
	}
}

type limitSpy struct {
	memOrders
	limit, offset int
}

func (s *limitSpy) List(_ context.Context, limit, offset int) ([]Order, error) {
	s.limit = limit
	s.offset = offset
	return nil, nil
}
