// Package bus 是通知的异步消息总线。业务事务提交后投递消息，消费者负责落库和推送
package bus

import (
	"context"
	"encoding/json"
	"time"

	"social-event-system/config"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/redis"
	"social-event-system/tools"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type MessageType string

const (
	TypeParticipationApproved MessageType = "PARTICIPATION_APPROVED"
	TypeNewEvent              MessageType = "NEW_EVENT"
	TypeEventUpdated          MessageType = "EVENT_UPDATED"
	TypeEventReminder         MessageType = "EVENT_REMINDER"
	TypeNewFollower           MessageType = "NEW_FOLLOWER"
)

type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	// Redelivered 处理失败后重投过一次
	Redelivered bool `json:"redelivered,omitempty"`
}

// NewMessage 序列化 payload 并分配消息 ID
func NewMessage(typ MessageType, payload any) (Message, error) {
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ID:        uuid.NewString(),
		Type:      typ,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode 反序列化 payload
func (m Message) Decode(v any) error {
	return sonic.Unmarshal(m.Payload, v)
}

// Handler 返回 error 时消息重投一次，重投后仍失败则丢弃
type Handler func(ctx context.Context, msg Message) error

type Bus interface {
	Publish(ctx context.Context, msg Message) error
	// Consume 阻塞直到 ctx 取消
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

var Default Bus = Nop{}

// Init 按配置选择实现，依赖 redis.Init 已经执行
func Init() {
	cfg := config.Get().Bus
	log := logger.New("Bus")
	switch cfg.Driver {
	case "redis":
		Default = NewRedisBus(redis.RedisClient, cfg.Queue)
	case "rabbitmq":
		b, err := NewAMQPBus(cfg.URL, cfg.Queue, cfg.Prefetch)
		tools.PanicOnErr(err)
		Default = b
	default:
		Default = Nop{}
	}
	log.Info("消息总线已初始化", "driver", cfg.Driver, "queue", cfg.Queue)
}

// Nop 丢弃所有消息，未配置总线时使用
type Nop struct{}

func (Nop) Publish(context.Context, Message) error { return nil }

func (Nop) Consume(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (Nop) Close() error { return nil }
