package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"anoa.com/careerhub/internal/entity"
	notifRepo "anoa.com/careerhub/internal/modules/notification/repository"
	notifService "anoa.com/careerhub/internal/modules/notification/service"
	"anoa.com/careerhub/internal/testutil"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyBadgeAwarded_StoresAndPublishes(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	ctx := context.Background()
	svc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), rdb)

	user := testutil.CreateUser(t, db, "Ayu", 0)
	sub := rdb.Subscribe(ctx, notifService.Channel(user.ID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	badge := entity.Badge{ID: uuid.New(), Name: "Achiever I", Threshold: 100}
	require.NoError(t, svc.NotifyBadgeAwarded(ctx, user.ID, badge))

	select {
	case msg := <-sub.Channel():
		var n entity.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		assert.Equal(t, entity.NotificationTypeBadgeAwarded, n.Type)
		assert.Equal(t, badge.ID, n.EntityID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	list, err := svc.GetNotifications(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "Achiever I")

	require.NoError(t, svc.MarkAsRead(ctx, list[0].ID))
	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAsRead_Unknown(t *testing.T) {
	db := testutil.NewDB(t)
	svc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)

	err := svc.MarkAsRead(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateNotification_WithoutRedis(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	user := testutil.CreateUser(t, db, "Bima", 0)

	require.NoError(t, svc.NotifyBadgeAwarded(ctx, user.ID, entity.Badge{ID: uuid.New(), Name: "Career Mastery", Threshold: 500}))
	require.NoError(t, svc.MarkAllAsRead(ctx, user.ID))

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
