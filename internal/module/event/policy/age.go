// Package policy 决定查看者能看到活动的哪些信息：成人活动年龄限制和需审核活动的地址隐藏
package policy

import (
	"context"
	"errors"
	"time"

	"social-event-system/internal/model"

	"gorm.io/gorm"
)

const AdultAge = 18

// Age 周岁：年份差，今年生日未到再减一
func Age(birth, now time.Time) int {
	birth, now = birth.UTC(), now.UTC()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsAdult 没有出生日期时按成年人处理
func IsAdult(birth *time.Time, now time.Time) bool {
	if birth == nil {
		return true
	}
	return Age(*birth, now) >= AdultAge
}

// BirthDates 用户出生日期来源
type BirthDates interface {
	BirthDate(ctx context.Context, userID uint) (*time.Time, error)
}

// UserBirthDates 从 user 表读取
type UserBirthDates struct {
	DB *gorm.DB
}

func (s UserBirthDates) BirthDate(ctx context.Context, userID uint) (*time.Time, error) {
	var u model.User
	err := s.DB.WithContext(ctx).Select("id", "birth_date").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.BirthDate, nil
}
