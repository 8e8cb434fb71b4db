package model

import "time"

type User struct {
	Model
	Email     string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"`
	RoleID    int        `gorm:"default:1;not null" json:"role_id"`
	FirstName string     `gorm:"type:varchar(64)" json:"first_name"`
	LastName  string     `gorm:"type:varchar(64)" json:"last_name"`
	AvatarURL string     `gorm:"type:varchar(255)" json:"avatar_url"`
	BirthDate *time.Time `json:"birth_date"`
}

// UserBrief 对外展示的部分用户信息
type UserBrief struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, AvatarURL: u.AvatarURL}
}

// DisplayName 通知文案里使用
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
