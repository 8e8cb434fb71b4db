package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"social-event-system/internal/global/bus"
	"social-event-system/internal/global/logger"
)

type ApprovedPayload struct {
	EventID       uint  `json:"event_id"`
	ParticipantID uint  `json:"participant_id"`
	ActorID       *uint `json:"actor_id,omitempty"`
}

type EventPayload struct {
	EventID uint `json:"event_id"`
	OwnerID uint `json:"owner_id"`
}

type FollowerPayload struct {
	FollowerID uint `json:"follower_id"`
	FolloweeID uint `json:"followee_id"`
}

// Publisher 业务事务提交后投递通知消息。投递在后台进行，失败只记日志，调用方不会被阻塞
type Publisher struct {
	bus     bus.Bus
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewPublisher(b bus.Bus) *Publisher {
	return &Publisher{bus: b, timeout: 2 * time.Second, log: logger.New("Notification")}
}

func (p *Publisher) NotifyParticipationApproved(ctx context.Context, eventID, participantID uint, actorID *uint) {
	p.publish(ctx, bus.TypeParticipationApproved, ApprovedPayload{EventID: eventID, ParticipantID: participantID, ActorID: actorID})
}

func (p *Publisher) NotifyEventCreated(ctx context.Context, eventID, ownerID uint) {
	p.publish(ctx, bus.TypeNewEvent, EventPayload{EventID: eventID, OwnerID: ownerID})
}

func (p *Publisher) NotifyEventUpdated(ctx context.Context, eventID, ownerID uint) {
	p.publish(ctx, bus.TypeEventUpdated, EventPayload{EventID: eventID, OwnerID: ownerID})
}

func (p *Publisher) NotifyEventReminder(ctx context.Context, eventID, ownerID uint) {
	p.publish(ctx, bus.TypeEventReminder, EventPayload{EventID: eventID, OwnerID: ownerID})
}

func (p *Publisher) NotifyNewFollower(ctx context.Context, followerID, followeeID uint) {
	p.publish(ctx, bus.TypeNewFollower, FollowerPayload{FollowerID: followerID, FolloweeID: followeeID})
}

// Wait 等待已发起的投递结束
func (p *Publisher) Wait() {
	p.wg.Wait()
}

func (p *Publisher) publish(ctx context.Context, typ bus.MessageType, payload any) {
	msg, err := bus.NewMessage(typ, payload)
	if err != nil {
		p.log.Error("序列化通知消息失败", "error", err, "type", typ)
		return
	}
	// 请求结束后 ctx 会被取消，投递不能跟着取消
	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		if err := p.bus.Publish(ctx, msg); err != nil {
			p.log.Error("投递通知消息失败", "error", err, "type", typ, "id", msg.ID)
		}
	}()
}
