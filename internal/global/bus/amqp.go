package bus

import (
	"context"
	"log/slog"
	"time"

	"social-event-system/internal/global/logger"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPBus 基于 RabbitMQ 的持久化队列，处理失败的消息会重新入队一次
type AMQPBus struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	queue    string
	prefetch int
	log      *slog.Logger
}

func NewAMQPBus(url, queue string, prefetch int) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 10
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &AMQPBus{conn: conn, ch: ch, queue: queue, prefetch: prefetch, log: logger.New("Bus")}, nil
}

func (b *AMQPBus) Publish(ctx context.Context, msg Message) error {
	raw, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	return b.ch.PublishWithContext(ctx, "", b.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         string(msg.Type),
		Timestamp:    time.Now(),
		Body:         raw,
	})
}

func (b *AMQPBus) Consume(ctx context.Context, handler Handler) error {
	deliveries, err := b.ch.ConsumeWithContext(ctx, b.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var msg Message
			if err := sonic.Unmarshal(d.Body, &msg); err != nil {
				b.log.Error("解析通知消息失败，已丢弃", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, msg); err != nil {
				b.log.Error("处理通知消息失败", "error", err, "id", msg.ID, "redelivered", d.Redelivered)
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (b *AMQPBus) Close() error {
	_ = b.ch.Close()
	return b.conn.Close()
}
