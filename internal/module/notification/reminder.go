package notification

import (
	"context"
	"log/slog"
	"time"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/sentry"
	"social-event-system/internal/global/sentry/tracing"
	"social-event-system/internal/model"

	"gorm.io/gorm"
)

type ReminderPublisher interface {
	NotifyEventReminder(ctx context.Context, eventID, ownerID uint)
}

// Reminder 为即将开始的活动发送一次提醒，reminder_sent_at 保证只发一次
type Reminder struct {
	db        *gorm.DB
	publisher ReminderPublisher
	window    time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func NewReminder(db *gorm.DB, publisher ReminderPublisher, window time.Duration) *Reminder {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Reminder{
		db:        db,
		publisher: publisher,
		window:    window,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.New("Reminder"),
	}
}

// RunOnce 返回本次发出提醒的活动数
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	db := r.db.WithContext(ctx)

	var events []model.Event
	err := db.Select("id", "owner_id").
		Where("status = ? AND reminder_sent_at IS NULL AND start_at > ? AND start_at <= ?",
			model.EventPublished, now, now.Add(r.window)).
		Find(&events).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, e := range events {
		// 先占位再投递，多实例同时运行时只有一个能占到
		res := db.Model(&model.Event{}).
			Where("id = ? AND reminder_sent_at IS NULL", e.ID).
			Update("reminder_sent_at", now)
		if res.Error != nil {
			return sent, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		r.publisher.NotifyEventReminder(ctx, e.ID, e.OwnerID)
		sent++
	}
	return sent, nil
}

// Run 启动时立即执行一次，之后按间隔执行
func (r *Reminder) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		jobCtx, span := tracing.StartJob(ctx, "notification.reminder")
		if n, err := r.RunOnce(jobCtx); err != nil {
			r.log.Error("发送活动提醒失败", "error", err)
			sentry.CaptureJobError(jobCtx, "notification.reminder", err)
		} else if n > 0 {
			r.log.Info("已发送活动提醒", "events", n)
		}
		if span != nil {
			span.Finish()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
