package sentry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"social-event-system/config"
	"social-event-system/internal/global/jwt"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

const release = "social-event-system@1.0.0"

// CodedError 带错误码的错误，错误码前三位是 HTTP 状态码
type CodedError interface {
	error
	GetCode() int32
}

func enabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// Init 未配置 DSN 时跳过
func Init() error {
	cfg := config.Get()
	if !enabled() {
		return nil
	}

	tracesSampleRate := cfg.Sentry.SampleRate
	if tracesSampleRate <= 0 {
		tracesSampleRate = 1.0
	}
	environment := cfg.Sentry.Environment
	if environment == "" {
		environment = string(cfg.Mode)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.Dsn,
		Environment:      environment,
		Release:          release,
		SampleRate:       1.0, // 错误事件不采样
		EnableTracing:    true,
		TracesSampleRate: tracesSampleRate,
		EnableLogs:       true,
		BeforeSend:       dropClientErrors,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

// dropClientErrors 名额已满、年龄限制这类 4xx 是正常业务结果，不上报
func dropClientErrors(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint != nil && hint.OriginalException != nil && !shouldReport(hint.OriginalException) {
		return nil
	}
	return event
}

// Middleware 未配置 DSN 时返回空中间件
func Middleware() gin.HandlerFunc {
	if !enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return sentrygin.New(sentrygin.Options{
		Repanic:         true, // 交给后面的 Recovery 处理
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// CaptureException 上报请求中的服务器错误，附带登录用户
func CaptureException(c *gin.Context, err error) {
	if !enabled() || !shouldReport(err) {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetTag("path", c.FullPath())
		scope.SetTag("method", c.Request.Method)
		if claims, ok := jwt.GetUserPayload(c); ok {
			scope.SetUser(sentry.User{
				ID:       strconv.FormatUint(uint64(claims.UserID), 10),
				Username: claims.Username,
			})
		}
		hub.CaptureException(err)
	})
}

// CaptureJobError 上报后台任务（归档、提醒、通知消费）的失败
func CaptureJobError(ctx context.Context, job string, err error) {
	if !enabled() || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("job", job)
		hub.CaptureException(err)
	})
}

// shouldReport 只上报 5xx 和未分类的错误
func shouldReport(err error) bool {
	var e CodedError
	if errors.As(err, &e) {
		status := e.GetCode() / 100
		return status >= 500 && status < 600
	}
	return true
}

// Flush 退出前调用，等待缓冲的事件发送完
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
