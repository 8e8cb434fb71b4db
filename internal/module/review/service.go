package review

import (
	"context"
	"errors"
	"time"

	"social-event-system/internal/global/database"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{db: db, now: now}
}

// RateEvent 参与者评价活动。活动结束后才能评价，每人只能评价一次
func (s *Service) RateEvent(ctx context.Context, eventID, authorID uint, rating int, text *string) (*model.Review, error) {
	if !model.ValidRating(rating) {
		return nil, response.ErrInvalidRequest.WithTips("评分必须在 1 到 5 之间")
	}
	db := s.db.WithContext(ctx)

	event, err := model.FindEvent(db, eventID)
	if err != nil {
		return nil, notFound(err, "活动不存在")
	}
	if s.now().Before(event.EndAt) {
		return nil, response.ErrTooEarly.WithTips("活动结束后才能评价")
	}
	p, err := model.FindParticipation(db, eventID, authorID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if p == nil || !p.Status.OccupiesSeat() {
		return nil, response.ErrForbidden.WithTips("只有参加了活动的用户才能评价")
	}

	existing, err := find(db, eventID, model.TargetEvent, 0, authorID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if existing != nil {
		return nil, response.ErrDuplicateReview
	}

	now := s.now()
	r := &model.Review{
		Row:      model.Row{CreatedAt: now, UpdatedAt: now},
		EventID:  eventID,
		Target:   model.TargetEvent,
		AuthorID: authorID,
		Rating:   rating,
		Text:     text,
	}
	if err := db.Create(r).Error; err != nil {
		// 并发提交时由唯一索引兜底
		if database.IsDuplicateKey(err) {
			return nil, response.ErrDuplicateReview
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return r, nil
}

// RateParticipant 组织者评价参与者，可反复修改，始终只保留一条
func (s *Service) RateParticipant(ctx context.Context, eventID, ownerID, participationID uint, rating int, text *string) (*model.Review, error) {
	if !model.ValidRating(rating) {
		return nil, response.ErrInvalidRequest.WithTips("评分必须在 1 到 5 之间")
	}
	db := s.db.WithContext(ctx)

	var p model.Participation
	if err := db.First(&p, participationID).Error; err != nil {
		return nil, notFound(err, "申请不存在")
	}
	if p.EventID != eventID {
		return nil, response.ErrNotFound.WithTips("申请不存在")
	}
	event, err := model.FindEvent(db, eventID)
	if err != nil {
		return nil, notFound(err, "活动不存在")
	}
	if !event.IsOwner(ownerID) {
		return nil, response.ErrForbidden
	}
	if s.now().Before(event.EndAt) {
		return nil, response.ErrTooEarly.WithTips("活动结束后才能评价参与者")
	}

	now := s.now()
	r := &model.Review{
		Row:          model.Row{CreatedAt: now, UpdatedAt: now},
		EventID:      eventID,
		Target:       model.TargetParticipant,
		TargetUserID: p.UserID,
		AuthorID:     ownerID,
		Rating:       rating,
		Text:         text,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "event_id"}, {Name: "target"}, {Name: "target_user_id"}, {Name: "author_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "text", "updated_at"}),
	}).Create(r).Error
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	// 冲突更新时部分驱动拿不到原行的 id，重新读一次
	saved, err := find(db, eventID, model.TargetParticipant, p.UserID, ownerID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return saved, nil
}

type Item struct {
	model.Review
	Author model.UserBrief `json:"author"`
}

// List 活动收到的评价，新的在前；rating 不为 nil 时只看该分数
func (s *Service) List(ctx context.Context, eventID uint, rating *int) ([]Item, error) {
	db := s.db.WithContext(ctx)
	if _, err := model.FindEvent(db, eventID); err != nil {
		return nil, notFound(err, "活动不存在")
	}

	q := db.Where("event_id = ? AND target = ?", eventID, model.TargetEvent)
	if rating != nil {
		q = q.Where("rating = ?", *rating)
	}
	var reviews []model.Review
	if err := q.Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return s.withAuthors(db, reviews)
}

// Mine 当前用户对活动的评价，没有时返回 nil
func (s *Service) Mine(ctx context.Context, eventID, authorID uint) (*model.Review, error) {
	r, err := find(s.db.WithContext(ctx), eventID, model.TargetEvent, 0, authorID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return r, nil
}

// ForUser 用户作为组织者收到的活动评价，或作为参与者收到的评价
func (s *Service) ForUser(ctx context.Context, userID uint, target model.ReviewTarget, rating *int) ([]Item, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&model.Review{})
	switch target {
	case model.TargetParticipant:
		q = q.Where("target = ? AND target_user_id = ?", model.TargetParticipant, userID)
	case model.TargetEvent, "":
		q = q.Where("target = ? AND event_id IN (?)", model.TargetEvent,
			db.Model(&model.Event{}).Select("id").Where("owner_id = ?", userID))
	default:
		return nil, response.ErrInvalidRequest.WithTips("未知的评价类型")
	}
	if rating != nil {
		q = q.Where("rating = ?", *rating)
	}
	var reviews []model.Review
	if err := q.Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return s.withAuthors(db, reviews)
}

func (s *Service) withAuthors(db *gorm.DB, reviews []model.Review) ([]Item, error) {
	ids := make([]uint, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.AuthorID)
	}
	authors := make(map[uint]model.UserBrief, len(ids))
	if len(ids) > 0 {
		var users []model.User
		if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		for i := range users {
			authors[users[i].ID] = users[i].Brief()
		}
	}
	items := make([]Item, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, Item{Review: r, Author: authors[r.AuthorID]})
	}
	return items, nil
}

func find(db *gorm.DB, eventID uint, target model.ReviewTarget, targetUserID, authorID uint) (*model.Review, error) {
	var r model.Review
	err := db.Where("event_id = ? AND target = ? AND target_user_id = ? AND author_id = ?", eventID, target, targetUserID, authorID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func notFound(err error, tips string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.ErrNotFound.WithTips(tips)
	}
	return response.ErrDatabase.WithOrigin(err)
}
