// Package tracing 提供 Sentry 性能追踪的集成：GORM、Redis、HTTP 客户端和后台任务
package tracing

import (
	"context"
	"time"

	"social-event-system/config"

	"github.com/getsentry/sentry-go"
)

// IsEnabled 是否配置了 Sentry
func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// StartSpanFromContext 在 ctx 当前 span 下创建子 span，没有父 span 时返回 no-op span
func StartSpanFromContext(ctx context.Context, operation, description string) *sentry.Span {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return &sentry.Span{}
	}
	span := parent.StartChild(operation)
	span.Description = description
	return span
}

// StartJob 为定时任务、消息消费等非 HTTP 入口开启一个 transaction
// 调用方负责 Finish
func StartJob(ctx context.Context, name string) (context.Context, *sentry.Span) {
	if !IsEnabled() {
		return ctx, nil
	}
	tx := sentry.StartTransaction(ctx, name, sentry.WithOpName("job"))
	return tx.Context(), tx
}

// finish 统一设置 span 状态并结束；未超过慢阈值的 span 不上报
func finish(span *sentry.Span, elapsed, slowThreshold time.Duration, err error) {
	if span == nil {
		return
	}
	if slowThreshold > 0 && elapsed < slowThreshold {
		span.Sampled = sentry.SampledFalse
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}
