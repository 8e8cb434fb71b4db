package participation

import (
	"context"
	"errors"
	"slices"
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/internal/module/event/policy"
	"social-event-system/internal/module/event/sweeper"
	"social-event-system/internal/module/participation/ledger"

	"gorm.io/gorm"
)

// Notifier 事务提交后调用，失败由实现方自行记录，不影响状态变更的结果
type Notifier interface {
	NotifyParticipationApproved(ctx context.Context, eventID, participantID uint, actorID *uint)
}

type Service struct {
	db       *gorm.DB
	births   policy.BirthDates
	notifier Notifier
	sweeper  *sweeper.Sweeper
	now      func() time.Time
}

func NewService(db *gorm.DB, births policy.BirthDates, notifier Notifier, sw *sweeper.Sweeper, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{db: db, births: births, notifier: notifier, sweeper: sw, now: now}
}

type JoinResult struct {
	*model.Participation
	// Autoconfirmed 活动无需审核，申请即通过
	Autoconfirmed bool `json:"autoconfirmed"`
}

// RequestJoin 申请参加活动。无需审核的活动直接占用名额并通过，否则进入待审核。
// 已拒绝或已取消的记录会被复用；已通过的记录原样返回
func (s *Service) RequestJoin(ctx context.Context, eventID, userID uint) (*JoinResult, error) {
	db := s.db.WithContext(ctx)

	event, err := model.FindEvent(db, eventID)
	if err != nil {
		return nil, notFound(err, "活动不存在")
	}
	if event.IsOwner(userID) {
		return nil, response.ErrOwnerCannotRequest
	}
	if event.IsAdultOnly {
		birth, err := s.births.BirthDate(ctx, userID)
		if err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		if !policy.IsAdult(birth, s.now()) {
			return nil, response.ErrAgeRestricted
		}
	}

	var (
		result   *model.Participation
		approved bool
		autoconf bool
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		locked, err := ledger.LockEvent(tx, eventID)
		if err != nil {
			return err
		}
		autoconf = !locked.RequiresApproval
		target := model.StatusRequested
		if autoconf {
			target = model.StatusApproved
		}

		existing, err := model.FindParticipation(tx, eventID, userID)
		if err != nil {
			return err
		}
		if existing != nil && (existing.Status.OccupiesSeat() || existing.Status == target) {
			result = existing
			return nil
		}

		if target.OccupiesSeat() {
			var exclude uint
			if existing != nil {
				exclude = existing.ID
			}
			if err := ledger.ReserveSeat(tx, locked, exclude); err != nil {
				return err
			}
		}

		if existing == nil {
			existing = &model.Participation{EventID: eventID, UserID: userID, Status: target}
			if err := tx.Create(existing).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(existing).Update("status", target).Error; err != nil {
				return err
			}
			existing.Status = target
		}
		result = existing
		approved = target == model.StatusApproved
		return nil
	})
	if err != nil {
		return nil, txError(err, "活动不存在")
	}

	if approved {
		s.notifier.NotifyParticipationApproved(ctx, eventID, userID, nil)
	}
	return &JoinResult{Participation: result, Autoconfirmed: autoconf}, nil
}

// organizerMoves 组织者可以执行的状态变更
var organizerMoves = map[model.ParticipationStatus][]model.ParticipationStatus{
	model.StatusRequested: {model.StatusApproved, model.StatusRejected, model.StatusCancelled},
	model.StatusApproved:  {model.StatusApproved, model.StatusRejected, model.StatusCancelled, model.StatusAttended},
}

func CanOrganizerMove(from, to model.ParticipationStatus) bool {
	return slices.Contains(organizerMoves[from], to)
}

// SetStatus 组织者审核。转为已通过时需要名额，已通过再次通过不做任何事
func (s *Service) SetStatus(ctx context.Context, eventID, ownerID, participationID uint, status model.ParticipationStatus) (*model.Participation, error) {
	if !status.Valid() {
		return nil, response.ErrInvalidRequest.WithTips("未知的参与状态")
	}

	var (
		p        model.Participation
		approved bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := ledger.LockEvent(tx, eventID)
		if err != nil {
			return err
		}
		if !event.IsOwner(ownerID) {
			return response.ErrForbidden
		}
		if err := tx.First(&p, participationID).Error; err != nil {
			return notFound(err, "申请不存在")
		}
		if p.EventID != eventID {
			return response.ErrNotFound.WithTips("申请不存在")
		}
		if !CanOrganizerMove(p.Status, status) {
			return response.ErrInvalidTransition.WithTips(string(p.Status) + " -> " + string(status))
		}
		if p.Status == status {
			return nil
		}
		if status.OccupiesSeat() && !p.Status.OccupiesSeat() {
			if err := ledger.ReserveSeat(tx, event, p.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&p).Update("status", status).Error; err != nil {
			return err
		}
		p.Status = status
		approved = status == model.StatusApproved
		return nil
	})
	if err != nil {
		return nil, txError(err, "活动不存在")
	}

	if approved {
		s.notifier.NotifyParticipationApproved(ctx, eventID, p.UserID, &ownerID)
	}
	return &p, nil
}

// Cancel 参与者取消自己的申请，活动结束后不能取消
func (s *Service) Cancel(ctx context.Context, eventID, userID uint) (*model.Participation, error) {
	var p *model.Participation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := ledger.LockEvent(tx, eventID)
		if err != nil {
			return err
		}
		p, err = model.FindParticipation(tx, eventID, userID)
		if err != nil {
			return err
		}
		if p == nil {
			return response.ErrNotFound.WithTips("申请不存在")
		}
		if event.Ended(s.now()) {
			return response.ErrTooEarly.WithTips("活动已结束，不能取消")
		}
		switch p.Status {
		case model.StatusCancelled:
			return nil
		case model.StatusRequested, model.StatusApproved:
			if err := tx.Model(p).Update("status", model.StatusCancelled).Error; err != nil {
				return err
			}
			p.Status = model.StatusCancelled
			return nil
		default:
			return response.ErrInvalidTransition.WithTips(string(p.Status) + " -> " + string(model.StatusCancelled))
		}
	})
	if err != nil {
		return nil, txError(err, "活动不存在")
	}
	return p, nil
}

type UserView struct {
	Participation     *model.Participation `json:"participation"`
	ParticipantReview *model.Review        `json:"participant_review"`
	EventReview       *model.Review        `json:"event_review"`
	AvailableSpots    *int                 `json:"available_spots"`
}

// Get 当前用户在活动上的参与情况、双向评价和剩余名额
func (s *Service) Get(ctx context.Context, eventID, userID uint) (*UserView, error) {
	db := s.db.WithContext(ctx)
	event, err := model.FindEvent(db, eventID)
	if err != nil {
		return nil, notFound(err, "活动不存在")
	}

	view := &UserView{}
	if view.Participation, err = model.FindParticipation(db, eventID, userID); err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if view.ParticipantReview, err = findReview(db, eventID, model.TargetParticipant, userID, event.OwnerID); err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if view.EventReview, err = findReview(db, eventID, model.TargetEvent, 0, userID); err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if view.AvailableSpots, err = ledger.RemainingSpots(db, event); err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return view, nil
}

type OwnerItem struct {
	*model.Participation
	User              model.UserBrief `json:"user"`
	Email             string          `json:"email"`
	ParticipantReview *model.Review   `json:"participant_review"`
}

// ListForOwner 组织者审核列表：按状态分组，组内按申请时间
func (s *Service) ListForOwner(ctx context.Context, eventID, ownerID uint) ([]OwnerItem, error) {
	if s.sweeper != nil {
		s.sweeper.BeforeRead(ctx)
	}

	db := s.db.WithContext(ctx)
	event, err := model.FindEvent(db, eventID)
	if err != nil {
		return nil, notFound(err, "活动不存在")
	}
	if !event.IsOwner(ownerID) {
		return nil, response.ErrForbidden
	}

	var rows []model.Participation
	if err := db.Where("event_id = ?", eventID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	slices.SortStableFunc(rows, func(a, b model.Participation) int {
		return a.Status.Rank() - b.Status.Rank()
	})

	userIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}

	users := make(map[uint]model.User, len(rows))
	reviews := make(map[uint]*model.Review, len(rows))
	if len(userIDs) > 0 {
		var us []model.User
		if err := db.Where("id IN ?", userIDs).Find(&us).Error; err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		for _, u := range us {
			users[u.ID] = u
		}

		var rs []model.Review
		err := db.Where("event_id = ? AND target = ? AND target_user_id IN ?", eventID, model.TargetParticipant, userIDs).
			Find(&rs).Error
		if err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		for i := range rs {
			reviews[rs[i].TargetUserID] = &rs[i]
		}
	}

	items := make([]OwnerItem, 0, len(rows))
	for i := range rows {
		u := users[rows[i].UserID]
		items = append(items, OwnerItem{
			Participation:     &rows[i],
			User:              u.Brief(),
			Email:             u.Email,
			ParticipantReview: reviews[rows[i].UserID],
		})
	}
	return items, nil
}

func findReview(db *gorm.DB, eventID uint, target model.ReviewTarget, targetUserID, authorID uint) (*model.Review, error) {
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

// txError 事务内返回的业务错误原样透出，其余归为数据库错误
func txError(err error, tips string) error {
	var e *response.Error
	if errors.As(err, &e) {
		return e
	}
	return notFound(err, tips)
}
