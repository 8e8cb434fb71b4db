package notification

import (
	"context"
	"testing"
	"time"

	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, s *Service, userID uint, contextID string, at time.Time) model.Notification {
	t.Helper()
	n := model.Notification{
		Row:       model.Row{CreatedAt: at, UpdatedAt: at},
		UserID:    userID,
		Type:      model.NotifyNewFollower,
		Message:   "hi",
		ContextID: contextID,
		DedupKey:  model.NotificationDedupKey(userID, model.NotifyNewFollower, nil, nil, contextID),
	}
	require.NoError(t, s.db.Create(&n).Error)
	return n
}

func TestServiceReadFlow(t *testing.T) {
	db := test.NewDB(t)
	s := NewService(db)
	ctx := context.Background()
	user := test.CreateUser(t, db, nil)
	other := test.CreateUser(t, db, nil)

	now := time.Now().UTC()
	first := seedNotification(t, s, user.ID, "a", now.Add(-time.Minute))
	second := seedNotification(t, s, user.ID, "b", now)
	foreign := seedNotification(t, s, other.ID, "a", now)

	list, err := s.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	unread, err := s.MarkRead(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// 不能标记别人的通知
	unread, err = s.MarkRead(ctx, user.ID, foreign.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
	otherUnread, err := s.UnreadCount(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherUnread)

	unread, err = s.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestServicePreferences(t *testing.T) {
	db := test.NewDB(t)
	s := NewService(db)
	ctx := context.Background()
	user := test.CreateUser(t, db, nil)

	pref, err := s.Preferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPreference(user.ID), *pref)

	off := false
	pref, err = s.UpdatePreferences(ctx, user.ID, PreferenceUpdate{NewEvent: &off})
	require.NoError(t, err)
	assert.False(t, pref.NewEvent)
	assert.True(t, pref.EventReminder)

	pref, err = s.Preferences(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, pref.NewEvent)
	assert.True(t, pref.NewFollower)

	var rows int64
	require.NoError(t, db.Model(&model.NotificationPreference{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestServiceDevices(t *testing.T) {
	db := test.NewDB(t)
	s := NewService(db)
	ctx := context.Background()
	a := test.CreateUser(t, db, nil)
	b := test.CreateUser(t, db, nil)

	require.NoError(t, s.RegisterDevice(ctx, a.ID, "tok", "ios"))
	// 同一设备换号登录，归属转移
	require.NoError(t, s.RegisterDevice(ctx, b.ID, "tok", "android"))

	var devices []model.DeviceToken
	require.NoError(t, db.Find(&devices).Error)
	require.Len(t, devices, 1)
	assert.Equal(t, b.ID, devices[0].UserID)
	assert.Equal(t, "android", devices[0].Platform)

	require.NoError(t, s.RemoveDevice(ctx, a.ID, "tok"))
	require.NoError(t, db.Find(&devices).Error)
	assert.Len(t, devices, 1)

	require.NoError(t, s.RemoveDevice(ctx, b.ID, "tok"))
	require.NoError(t, db.Find(&devices).Error)
	assert.Empty(t, devices)
}
