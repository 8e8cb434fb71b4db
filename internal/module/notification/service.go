package notification

import (
	"context"
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listLimit = 100

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List 最近 100 条，新的在前
func (s *Service) List(ctx context.Context, userID uint) ([]model.Notification, error) {
	var list []model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(listLimit).
		Find(&list).Error
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, err := unreadCount(s.db.WithContext(ctx), userID)
	if err != nil {
		return 0, response.ErrDatabase.WithOrigin(err)
	}
	return n, nil
}

// MarkRead 只能标记自己的通知，返回剩余未读数
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) (int64, error) {
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
	if err != nil {
		return 0, response.ErrDatabase.WithOrigin(err)
	}
	return s.UnreadCount(ctx, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return 0, response.ErrDatabase.WithOrigin(err)
	}
	return s.UnreadCount(ctx, userID)
}

// Preferences 没有记录时按默认值创建
func (s *Service) Preferences(ctx context.Context, userID uint) (*model.NotificationPreference, error) {
	var pref model.NotificationPreference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Attrs(model.DefaultPreference(userID)).
		FirstOrCreate(&pref).Error
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &pref, nil
}

// PreferenceUpdate 为 nil 的字段保持不变
type PreferenceUpdate struct {
	NewEvent              *bool `json:"new_event"`
	EventReminder         *bool `json:"event_reminder"`
	ParticipationApproved *bool `json:"participation_approved"`
	NewFollower           *bool `json:"new_follower"`
	EventUpdated          *bool `json:"event_updated"`
}

func (s *Service) UpdatePreferences(ctx context.Context, userID uint, u PreferenceUpdate) (*model.NotificationPreference, error) {
	pref, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&pref.NewEvent, u.NewEvent)
	set(&pref.EventReminder, u.EventReminder)
	set(&pref.ParticipationApproved, u.ParticipationApproved)
	set(&pref.NewFollower, u.NewFollower)
	set(&pref.EventUpdated, u.EventUpdated)

	// Save 会写入零值
	if err := s.db.WithContext(ctx).Save(pref).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return pref, nil
}

// RegisterDevice 同一个 token 重新登录其他账号时转移归属
func (s *Service) RegisterDevice(ctx context.Context, userID uint, token, platform string) error {
	now := time.Now().UTC()
	d := model.DeviceToken{
		Row:      model.Row{CreatedAt: now, UpdatedAt: now},
		UserID:   userID,
		Token:    token,
		Platform: platform,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(&d).Error
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}

func (s *Service) RemoveDevice(ctx context.Context, userID uint, token string) error {
	err := s.db.WithContext(ctx).Where("token = ? AND user_id = ?", token, userID).Delete(&model.DeviceToken{}).Error
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}
