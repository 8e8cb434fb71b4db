package model

import (
	"fmt"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotifyNewEvent              NotificationType = "NEW_EVENT"
	NotifyEventReminder         NotificationType = "EVENT_REMINDER"
	NotifyParticipationApproved NotificationType = "PARTICIPATION_APPROVED"
	NotifyNewFollower           NotificationType = "NEW_FOLLOWER"
	NotifyEventUpdated          NotificationType = "EVENT_UPDATED"
)

type Notification struct {
	Row
	UserID    uint             `gorm:"index;not null" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Message   string           `gorm:"type:varchar(512);not null" json:"message"`
	EventID   *uint            `json:"event_id"`
	ActorID   *uint            `json:"actor_id"`
	ContextID string           `gorm:"type:varchar(64)" json:"context_id"`
	// DedupKey 同一 (用户, 类型, 活动, 发起人, 上下文) 只保留一条
	DedupKey string         `gorm:"type:varchar(191);uniqueIndex;not null" json:"-"`
	Meta     datatypes.JSON `json:"meta"`
	Read     bool           `gorm:"column:is_read;index;not null" json:"read"`
}

func NotificationDedupKey(userID uint, typ NotificationType, eventID, actorID *uint, contextID string) string {
	return fmt.Sprintf("%d:%s:%s:%s:%s", userID, typ, optID(eventID), optID(actorID), contextID)
}

func optID(id *uint) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}

// NotificationPreference 用户的通知开关，没有记录时视为全部开启
type NotificationPreference struct {
	UserID                uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	NewEvent              bool `json:"new_event"`
	EventReminder         bool `json:"event_reminder"`
	ParticipationApproved bool `json:"participation_approved"`
	NewFollower           bool `json:"new_follower"`
	EventUpdated          bool `json:"event_updated"`
}

func DefaultPreference(userID uint) NotificationPreference {
	return NotificationPreference{
		UserID:                userID,
		NewEvent:              true,
		EventReminder:         true,
		ParticipationApproved: true,
		NewFollower:           true,
		EventUpdated:          true,
	}
}

func (p NotificationPreference) Allows(t NotificationType) bool {
	switch t {
	case NotifyNewEvent:
		return p.NewEvent
	case NotifyEventReminder:
		return p.EventReminder
	case NotifyParticipationApproved:
		return p.ParticipationApproved
	case NotifyNewFollower:
		return p.NewFollower
	case NotifyEventUpdated:
		return p.EventUpdated
	}
	return true
}

// DeviceToken 推送设备，同一 token 换绑用户时覆盖
type DeviceToken struct {
	Row
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	Token    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	Platform string `gorm:"type:varchar(16)" json:"platform"`
}
