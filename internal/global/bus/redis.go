package bus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"social-event-system/internal/global/logger"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// RedisBus 基于 Redis 列表的队列：LPUSH 入队，BRPOP 出队
type RedisBus struct {
	client *redis.Client
	queue  string
	// block BRPOP 单次阻塞时长，过期后重新检查 ctx
	block time.Duration
	log   *slog.Logger
}

func NewRedisBus(client *redis.Client, queue string) *RedisBus {
	return &RedisBus{
		client: client,
		queue:  queue,
		block:  2 * time.Second,
		log:    logger.New("Bus"),
	}
}

func (b *RedisBus) Publish(ctx context.Context, msg Message) error {
	raw, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.LPush(ctx, b.queue, raw).Err()
}

func (b *RedisBus) Consume(ctx context.Context, handler Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := b.client.BRPop(ctx, b.block, b.queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("读取通知队列失败", "error", err)
			time.Sleep(time.Second)
			continue
		}
		// res[0] 是队列名
		var msg Message
		if err := sonic.Unmarshal([]byte(res[1]), &msg); err != nil {
			b.log.Error("解析通知消息失败，已丢弃", "error", err)
			continue
		}
		if err := handler(ctx, msg); err != nil {
			b.log.Error("处理通知消息失败", "error", err, "id", msg.ID, "type", msg.Type, "redelivered", msg.Redelivered)
			if !msg.Redelivered {
				b.requeue(ctx, msg)
			}
		}
	}
}

// requeue 放回队尾，退出消费时也要写回去
func (b *RedisBus) requeue(ctx context.Context, msg Message) {
	msg.Redelivered = true
	if err := b.Publish(context.WithoutCancel(ctx), msg); err != nil {
		b.log.Error("通知消息重投失败，已丢弃", "error", err, "id", msg.ID)
	}
}

func (b *RedisBus) Close() error {
	return nil
}
