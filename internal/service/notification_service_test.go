package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAllReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)

	svc.NotifyPurchase(ctx, "seller-1", `Your item "Bike" has been purchased by buyer@example.com!`)
	svc.NotifyPurchase(ctx, "seller-1", `Your item "Lamp" has been purchased by buyer@example.com!`)

	_, unread, err := svc.List(ctx, "seller-1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkAllRead(ctx, "seller-1"))
	_, unread, err = svc.List(ctx, "seller-1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Second call is a no-op, not an error.
	require.NoError(t, svc.MarkAllRead(ctx, "seller-1"))
	list, unread, err := svc.List(ctx, "seller-1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
	for _, n := range list {
		assert.True(t, n.Read)
	}
}

func TestMarkReadSingle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)

	svc.NotifyPurchase(ctx, "seller-1", "first")
	svc.NotifyPurchase(ctx, "seller-1", "second")

	require.NoError(t, svc.MarkRead(ctx, 1, "seller-1"))
	_, unread, err := svc.List(ctx, "seller-1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// Re-marking the same row is a no-op.
	require.NoError(t, svc.MarkRead(ctx, 1, "seller-1"))
	_, unread, _ = svc.List(ctx, "seller-1", 10)
	assert.Equal(t, int64(1), unread)

	// Another recipient cannot mark someone else's notification.
	require.NoError(t, svc.MarkRead(ctx, 2, "stranger"))
	_, unread, _ = svc.List(ctx, "seller-1", 10)
	assert.Equal(t, int64(1), unread)
}
