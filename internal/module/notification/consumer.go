package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"social-event-system/internal/global/bus"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/sentry/tracing"
	"social-event-system/internal/model"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Consumer 消费通知消息：确定收件人，按偏好过滤，落库并推送
type Consumer struct {
	db     *gorm.DB
	pusher Pusher
	now    func() time.Time
	log    *slog.Logger
}

func NewConsumer(db *gorm.DB, pusher Pusher) *Consumer {
	return &Consumer{
		db:     db,
		pusher: pusher,
		now:    func() time.Time { return time.Now().UTC() },
		log:    logger.New("Notification"),
	}
}

// draft 一类通知的公共内容，每个收件人一份
type draft struct {
	typ       model.NotificationType
	message   string
	pushTitle string
	eventID   *uint
	actorID   *uint
	contextID string
	meta      map[string]any
}

func (c *Consumer) Handle(ctx context.Context, msg bus.Message) error {
	ctx, span := tracing.StartJob(ctx, "notification."+string(msg.Type))
	if span != nil {
		defer span.Finish()
	}

	switch msg.Type {
	case bus.TypeParticipationApproved:
		var p ApprovedPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		return c.participationApproved(ctx, p)
	case bus.TypeNewEvent, bus.TypeEventUpdated, bus.TypeEventReminder:
		var p EventPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		return c.eventChanged(ctx, msg.Type, p)
	case bus.TypeNewFollower:
		var p FollowerPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		return c.newFollower(ctx, p)
	default:
		c.log.Warn("未知的通知类型，已忽略", "type", msg.Type, "id", msg.ID)
		return nil
	}
}

func (c *Consumer) participationApproved(ctx context.Context, p ApprovedPayload) error {
	db := c.db.WithContext(ctx)
	event, err := model.FindEvent(db, p.EventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	message := fmt.Sprintf("你参加「%s」的申请已通过", event.Title)
	if p.ActorID != nil {
		var actor model.User
		if err := db.First(&actor, *p.ActorID).Error; err == nil {
			message = fmt.Sprintf("%s 通过了你参加「%s」的申请", actor.DisplayName(), event.Title)
		}
	}
	return c.deliver(ctx, []uint{p.ParticipantID}, draft{
		typ:       model.NotifyParticipationApproved,
		message:   message,
		pushTitle: "申请已通过",
		eventID:   &event.ID,
		actorID:   p.ActorID,
		contextID: "participation-approved",
	})
}

func (c *Consumer) eventChanged(ctx context.Context, typ bus.MessageType, p EventPayload) error {
	db := c.db.WithContext(ctx)
	event, err := model.FindEvent(db, p.EventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var owner model.User
	if err := db.First(&owner, event.OwnerID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var (
		recipients []uint
		d          = draft{eventID: &event.ID, actorID: &event.OwnerID}
	)
	switch typ {
	case bus.TypeNewEvent:
		if recipients, err = c.followers(db, event.OwnerID); err != nil {
			return err
		}
		d.typ = model.NotifyNewEvent
		d.pushTitle = "新活动"
		d.message = fmt.Sprintf("%s 发布了新活动：%s", owner.DisplayName(), event.Title)
	case bus.TypeEventUpdated:
		if recipients, err = c.seatHolders(db, event.ID); err != nil {
			return err
		}
		d.typ = model.NotifyEventUpdated
		d.pushTitle = "活动有更新"
		d.message = fmt.Sprintf("活动「%s」的信息有更新", event.Title)
		d.contextID = strconv.FormatInt(event.UpdatedAt.Unix(), 10)
	case bus.TypeEventReminder:
		followers, err := c.followers(db, event.OwnerID)
		if err != nil {
			return err
		}
		holders, err := c.seatHolders(db, event.ID)
		if err != nil {
			return err
		}
		recipients = append(followers, holders...)
		d.typ = model.NotifyEventReminder
		d.pushTitle = "活动即将开始"
		d.message = fmt.Sprintf("活动「%s」即将开始", event.Title)
	}

	recipients = slices.DeleteFunc(recipients, func(id uint) bool { return id == event.OwnerID })
	return c.deliver(ctx, recipients, d)
}

func (c *Consumer) newFollower(ctx context.Context, p FollowerPayload) error {
	var follower model.User
	err := c.db.WithContext(ctx).First(&follower, p.FollowerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.deliver(ctx, []uint{p.FolloweeID}, draft{
		typ:       model.NotifyNewFollower,
		message:   fmt.Sprintf("%s 关注了你", follower.DisplayName()),
		pushTitle: "新的关注者",
		actorID:   &p.FollowerID,
		contextID: strconv.FormatUint(uint64(p.FollowerID), 10),
		meta:      map[string]any{"follower_id": p.FollowerID},
	})
}

func (c *Consumer) followers(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&model.Follow{}).Where("followee_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, err
}

func (c *Consumer) seatHolders(db *gorm.DB, eventID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&model.Participation{}).
		Where("event_id = ? AND status IN ?", eventID, model.SeatStatuses).
		Pluck("user_id", &ids).Error
	return ids, err
}

// deliver 去重收件人，按偏好过滤，逐个落库和推送
func (c *Consumer) deliver(ctx context.Context, userIDs []uint, d draft) error {
	slices.Sort(userIDs)
	userIDs = slices.Compact(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	db := c.db.WithContext(ctx)

	recipients, err := allowedRecipients(db, userIDs, d.typ)
	if err != nil {
		return err
	}

	var meta datatypes.JSON
	if d.meta != nil {
		raw, err := sonic.Marshal(d.meta)
		if err != nil {
			return err
		}
		meta = raw
	}

	now := c.now()
	for _, userID := range recipients {
		n := model.Notification{
			Row:       model.Row{CreatedAt: now, UpdatedAt: now},
			UserID:    userID,
			Type:      d.typ,
			Message:   d.message,
			EventID:   d.eventID,
			ActorID:   d.actorID,
			ContextID: d.contextID,
			DedupKey:  model.NotificationDedupKey(userID, d.typ, d.eventID, d.actorID, d.contextID),
			Meta:      meta,
		}
		// 相同通知再次触发时刷新内容并重新置为未读
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"message", "is_read", "meta", "created_at", "updated_at"}),
		}).Create(&n).Error
		if err != nil {
			return err
		}

		if c.pusher == nil {
			continue
		}
		unread, err := unreadCount(db, userID)
		if err != nil {
			c.log.Warn("统计未读通知失败", "error", err, "user_id", userID)
		}
		data := map[string]string{"type": string(d.typ)}
		if d.eventID != nil {
			data["event_id"] = strconv.FormatUint(uint64(*d.eventID), 10)
		}
		if d.actorID != nil {
			data["actor_id"] = strconv.FormatUint(uint64(*d.actorID), 10)
		}
		c.pusher.SendToUser(ctx, userID, PushPayload{Title: d.pushTitle, Body: d.message, Badge: unread, Data: data})
	}
	return nil
}

// allowedRecipients 没有偏好记录的用户按全部开启处理
func allowedRecipients(db *gorm.DB, userIDs []uint, typ model.NotificationType) ([]uint, error) {
	var prefs []model.NotificationPreference
	if err := db.Where("user_id IN ?", userIDs).Find(&prefs).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uint]model.NotificationPreference, len(prefs))
	for _, p := range prefs {
		byUser[p.UserID] = p
	}
	out := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		p, ok := byUser[id]
		if !ok || p.Allows(typ) {
			out = append(out, id)
		}
	}
	return out, nil
}

func unreadCount(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&model.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}
