package test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"social-event-system/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var userSeq atomic.Int64

// CreateUser birth 为 nil 表示未填写出生日期
func CreateUser(t *testing.T, db *gorm.DB, birth *time.Time) *model.User {
	t.Helper()
	n := userSeq.Add(1)
	u := &model.User{
		Email:     fmt.Sprintf("user%d@example.com", n),
		Password:  "x",
		RoleID:    1,
		FirstName: fmt.Sprintf("User%d", n),
		BirthDate: birth,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// BirthDateYearsAgo 生日恰好在 years 年前的那一天
func BirthDateYearsAgo(now time.Time, years int) *time.Time {
	d := now.AddDate(-years, 0, 0)
	return &d
}

type EventOption func(e *model.Event)

func WithCapacity(n int) EventOption {
	return func(e *model.Event) { e.Capacity = &n }
}

func WithApproval() EventOption {
	return func(e *model.Event) { e.RequiresApproval = true }
}

func WithAdultOnly() EventOption {
	return func(e *model.Event) { e.IsAdultOnly = true }
}

// WithWindow 设置开始和结束时间
func WithWindow(start, end time.Time) EventOption {
	return func(e *model.Event) {
		e.StartAt = start
		e.EndAt = end
	}
}

func WithAddress(addr string, lat, lon float64) EventOption {
	return func(e *model.Event) {
		e.Address = &addr
		e.Lat = &lat
		e.Lon = &lon
	}
}

func WithCity(city string) EventOption {
	return func(e *model.Event) { e.City = city }
}

func WithStatus(s model.EventStatus) EventOption {
	return func(e *model.Event) { e.Status = s }
}

// CreateEvent 默认：已发布、不限人数、无需审核，明天开始持续两小时
func CreateEvent(t *testing.T, db *gorm.DB, ownerID uint, opts ...EventOption) *model.Event {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	e := &model.Event{
		OwnerID: ownerID,
		Title:   "Board games night",
		StartAt: start,
		EndAt:   start.Add(2 * time.Hour),
		Status:  model.EventPublished,
	}
	for _, opt := range opts {
		opt(e)
	}
	categoryID, err := model.DefaultCategoryID(db)
	require.NoError(t, err)
	e.CategoryID = categoryID
	require.NoError(t, db.Create(e).Error)
	return e
}

// CreateParticipation 直接写入一条参与记录，绕过状态机
func CreateParticipation(t *testing.T, db *gorm.DB, eventID, userID uint, status model.ParticipationStatus) *model.Participation {
	t.Helper()
	p := &model.Participation{EventID: eventID, UserID: userID, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}
