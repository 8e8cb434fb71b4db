package model

import (
	"errors"

	"gorm.io/gorm"
)

// Participation 用户与活动的关系，每个 (event_id, user_id) 只有一行，只流转不删除
type Participation struct {
	Row
	EventID uint                `gorm:"uniqueIndex:idx_participation_event_user;not null" json:"event_id"`
	UserID  uint                `gorm:"uniqueIndex:idx_participation_event_user;index;not null" json:"user_id"`
	Status  ParticipationStatus `gorm:"type:varchar(16);index;not null" json:"status"`
}

// FindParticipation 不存在时返回 (nil, nil)
func FindParticipation(tx *gorm.DB, eventID, userID uint) (*Participation, error) {
	var p Participation
	err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
