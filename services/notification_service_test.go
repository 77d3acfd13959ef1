package services

import (
	"testing"

	"github.com/greenloophq/greenloop/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadNotificationsExcludeRead(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	first, err := svc.CreateNotification(1, "You've earned 10 points for reporting waste!", models.NotificationTypeReward)
	require.NoError(t, err)
	_, err = svc.CreateNotification(1, "Your report was verified", models.NotificationTypeReport)
	require.NoError(t, err)
	_, err = svc.CreateNotification(2, "You've earned 15 points for collecting waste!", models.NotificationTypeReward)
	require.NoError(t, err)

	unread, err := svc.GetUnreadNotifications(1)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	require.NoError(t, svc.MarkNotificationAsRead(first.ID))
	unread, err = svc.GetUnreadNotifications(1)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Your report was verified", unread[0].Message)
}

func TestMarkNotificationAsReadIsIdempotent(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	notification, err := svc.CreateNotification(1, "hello", models.NotificationTypeReward)
	require.NoError(t, err)

	require.NoError(t, svc.MarkNotificationAsRead(notification.ID))
	require.NoError(t, svc.MarkNotificationAsRead(notification.ID))

	unread, err := svc.GetUnreadNotifications(1)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// Unknown ids are a no-op as well.
	assert.NoError(t, svc.MarkNotificationAsRead(999))
}
