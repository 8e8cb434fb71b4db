// Package sweeper 把已结束的已发布活动归档为草稿。条件更新，可重复、可并发执行
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"social-event-system/internal/global/sentry"
	"social-event-system/internal/global/sentry/tracing"
	"social-event-system/internal/model"

	"gorm.io/gorm"
)

type Sweeper struct {
	db  *gorm.DB
	now func() time.Time
	log *slog.Logger
}

func New(db *gorm.DB, now func() time.Time, log *slog.Logger) *Sweeper {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Sweeper{db: db, now: now, log: log}
}

// Sweep 返回本次归档的活动数
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("status = ? AND end_at < ?", model.EventPublished, s.now()).
		Update("status", model.EventDraft)
	return res.RowsAffected, res.Error
}

// BeforeRead 列表读取前调用：失败重试一次，仍失败只记录日志，不影响读取
func (s *Sweeper) BeforeRead(ctx context.Context) {
	if _, err := s.Sweep(ctx); err == nil {
		return
	}
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Warn("归档已结束活动失败", "error", err)
	}
}

// Run 按固定间隔执行，直到 ctx 取消
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobCtx, span := tracing.StartJob(ctx, "event.sweep")
			n, err := s.Sweep(jobCtx)
			if err != nil {
				s.log.Error("定时归档活动失败", "error", err)
				sentry.CaptureJobError(jobCtx, "event.sweep", err)
			} else if n > 0 {
				s.log.Info("已归档结束的活动", "count", n)
			}
			if span != nil {
				span.Finish()
			}
		}
	}
}
