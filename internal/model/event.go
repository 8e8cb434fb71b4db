package model

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	Model
	OwnerID          uint        `gorm:"index;not null" json:"owner_id"`
	CategoryID       uint        `gorm:"index" json:"category_id"`
	Title            string      `gorm:"type:varchar(255);not null" json:"title"`
	Description      string      `gorm:"type:text" json:"description"`
	StartAt          time.Time   `gorm:"index;not null" json:"start_at"`
	EndAt            time.Time   `gorm:"index;not null" json:"end_at"`
	Capacity         *int        `json:"capacity"` // nil 表示不限人数
	RequiresApproval bool        `gorm:"not null" json:"requires_approval"`
	IsAdultOnly      bool        `gorm:"not null" json:"is_adult_only"`
	IsPaid           bool        `gorm:"not null" json:"is_paid"`
	Price            *float64    `json:"price"`
	Currency         string      `gorm:"type:varchar(8)" json:"currency"`
	Status           EventStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	City             string      `gorm:"type:varchar(128);index" json:"city"`
	Address          *string     `gorm:"type:varchar(255)" json:"address"`
	Lat              *float64    `json:"lat"`
	Lon              *float64    `json:"lon"`
	CoverURL         string      `gorm:"type:varchar(255)" json:"cover_url"`
	ReminderSentAt   *time.Time  `json:"reminder_sent_at"`
	// IsAddressHidden 读取时按查看者计算，不落库
	IsAddressHidden bool `gorm:"-" json:"is_address_hidden"`
}

func (e *Event) IsOwner(userID uint) bool {
	return e.OwnerID == userID
}

// Ended 结束时间已到（含边界）
func (e *Event) Ended(now time.Time) bool {
	return !now.Before(e.EndAt)
}

// FindEvent 不存在时返回 gorm.ErrRecordNotFound
func FindEvent(tx *gorm.DB, id uint) (*Event, error) {
	var e Event
	if err := tx.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}
