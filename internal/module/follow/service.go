package follow

import (
	"context"
	"errors"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Notifier interface {
	NotifyNewFollower(ctx context.Context, followerID, followeeID uint)
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// Follow 重复关注不报错，只有新建关注关系时才通知被关注者
func (s *Service) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return response.ErrInvalidRequest.WithTips("不能关注自己")
	}
	db := s.db.WithContext(ctx)
	if err := s.ensureUser(db, followeeID); err != nil {
		return err
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerID: followerID, FolloweeID: followeeID})
	if res.Error != nil {
		return response.ErrDatabase.WithOrigin(res.Error)
	}
	if res.RowsAffected > 0 {
		s.notifier.NotifyNewFollower(ctx, followerID, followeeID)
	}
	return nil
}

// Unfollow 未关注时同样返回成功
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}

// Followers 关注 userID 的人，最近关注的在前
func (s *Service) Followers(ctx context.Context, userID uint) ([]model.UserBrief, error) {
	return s.list(ctx, userID, "followee_id", "follower_id")
}

// Following userID 关注的人，最近关注的在前
func (s *Service) Following(ctx context.Context, userID uint) ([]model.UserBrief, error) {
	return s.list(ctx, userID, "follower_id", "followee_id")
}

func (s *Service) list(ctx context.Context, userID uint, by, pick string) ([]model.UserBrief, error) {
	db := s.db.WithContext(ctx)
	if err := s.ensureUser(db, userID); err != nil {
		return nil, err
	}

	var follows []model.Follow
	if err := db.Where(by+" = ?", userID).Order("created_at DESC, id DESC").Find(&follows).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	ids := make([]uint, 0, len(follows))
	for _, f := range follows {
		if pick == "follower_id" {
			ids = append(ids, f.FollowerID)
		} else {
			ids = append(ids, f.FolloweeID)
		}
	}
	if len(ids) == 0 {
		return []model.UserBrief{}, nil
	}

	var users []model.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	byID := make(map[uint]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	out := make([]model.UserBrief, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Brief())
		}
	}
	return out, nil
}

func (s *Service) ensureUser(db *gorm.DB, id uint) error {
	var u model.User
	if err := db.Select("id").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.ErrNotFound.WithTips("用户不存在")
		}
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}
