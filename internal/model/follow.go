package model

import "time"

type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID uint      `gorm:"uniqueIndex:idx_follow_pair;not null" json:"follower_id"`
	FolloweeID uint      `gorm:"uniqueIndex:idx_follow_pair;index;not null" json:"followee_id"`
}
