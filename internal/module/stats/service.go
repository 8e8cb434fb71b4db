package stats

import (
	"context"
	"errors"
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/internal/module/participation/ledger"

	"gorm.io/gorm"
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

// BriefResult 活动概况，仅创建者可见
type BriefResult struct {
	EventID        uint                                `json:"event_id"`
	Participations map[model.ParticipationStatus]int64 `json:"participations"`
	AvailableSpots *int                                `json:"available_spots"`
	ReviewCount    int64                               `json:"review_count"`
	AverageRating  *float64                            `json:"average_rating"`
	// RatingCounts 下标 0 对应 1 星
	RatingCounts [5]int64 `json:"rating_counts"`
}

func (s *Service) Brief(ctx context.Context, eventID, ownerID uint) (*BriefResult, error) {
	db := s.db.WithContext(ctx)
	e, err := model.FindEvent(db, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrNotFound.WithTips("活动不存在")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if !e.IsOwner(ownerID) {
		return nil, response.ErrForbidden
	}

	res := &BriefResult{EventID: e.ID, Participations: map[model.ParticipationStatus]int64{}}
	for _, st := range model.ParticipationStatuses {
		res.Participations[st] = 0
	}
	var byStatus []struct {
		Status model.ParticipationStatus
		N      int64
	}
	if err := db.Model(&model.Participation{}).
		Select("status, COUNT(*) AS n").
		Where("event_id = ?", e.ID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	for _, row := range byStatus {
		res.Participations[row.Status] = row.N
	}

	spots, err := ledger.RemainingSpotsBatch(db, []model.Event{*e})
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	res.AvailableSpots = spots[e.ID]

	var byRating []struct {
		Rating int
		N      int64
	}
	if err := db.Model(&model.Review{}).
		Select("rating, COUNT(*) AS n").
		Where("event_id = ? AND target = ?", e.ID, model.TargetEvent).
		Group("rating").
		Scan(&byRating).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	var sum int64
	for _, row := range byRating {
		if !model.ValidRating(row.Rating) {
			continue
		}
		res.RatingCounts[row.Rating-model.MinRating] = row.N
		res.ReviewCount += row.N
		sum += int64(row.Rating) * row.N
	}
	if res.ReviewCount > 0 {
		avg := float64(sum) / float64(res.ReviewCount)
		res.AverageRating = &avg
	}
	return res, nil
}

// HistoryItem 参加过的活动及本人的参与状态
type HistoryItem struct {
	Event  model.Event               `json:"event"`
	Status model.ParticipationStatus `json:"status"`
}

// History 已结束且本人占过名额的活动，最近结束的在前
func (s *Service) History(ctx context.Context, userID uint, offset, limit int) ([]HistoryItem, int64, error) {
	db := s.db.WithContext(ctx)
	query := func() *gorm.DB {
		return db.Model(&model.Participation{}).
			Joins("JOIN event ON event.id = participation.event_id AND event.deleted_at IS NULL").
			Where("participation.user_id = ? AND participation.status IN ? AND event.end_at <= ?",
				userID, model.SeatStatuses, s.now())
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, response.ErrDatabase.WithOrigin(err)
	}
	var parts []model.Participation
	if err := query().Select("participation.*").
		Order("event.end_at DESC, participation.id DESC").
		Offset(offset).Limit(limit).
		Find(&parts).Error; err != nil {
		return nil, 0, response.ErrDatabase.WithOrigin(err)
	}
	if len(parts) == 0 {
		return []HistoryItem{}, total, nil
	}

	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.EventID)
	}
	var events []model.Event
	if err := db.Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, 0, response.ErrDatabase.WithOrigin(err)
	}
	byID := make(map[uint]model.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	items := make([]HistoryItem, 0, len(parts))
	for _, p := range parts {
		items = append(items, HistoryItem{Event: byID[p.EventID], Status: p.Status})
	}
	return items, total, nil
}
