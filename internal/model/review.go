package model

// Review 评价。对活动的评价 TargetUserID 为 0，
// 唯一索引同时约束 (活动, 作者) 只能评价一次活动，(活动, 参与者) 只有一条参与者评价
type Review struct {
	Row
	EventID      uint         `gorm:"uniqueIndex:idx_review_unique,priority:1;not null" json:"event_id"`
	Target       ReviewTarget `gorm:"type:varchar(16);uniqueIndex:idx_review_unique,priority:2;not null" json:"target"`
	TargetUserID uint         `gorm:"uniqueIndex:idx_review_unique,priority:3;not null;default:0" json:"target_user_id,omitempty"`
	AuthorID     uint         `gorm:"uniqueIndex:idx_review_unique,priority:4;index;not null" json:"author_id"`
	Rating       int          `gorm:"not null" json:"rating"`
	Text         *string      `gorm:"type:text" json:"text"`
}

const (
	MinRating = 1
	MaxRating = 5
)

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
