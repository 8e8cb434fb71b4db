package httpclient

import (
	"time"

	"social-event-system/internal/global/sentry/tracing"

	"github.com/go-resty/resty/v2"
)

var Client *resty.Client

func Init() {
	Client = New(10 * time.Second)
}

// New 带 Sentry 追踪的 resty 客户端
func New(timeout time.Duration) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if tracing.IsEnabled() {
		tracing.SetupRestyTracing(client)
	}
	return client
}
