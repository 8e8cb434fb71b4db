package middleware

import (
	"bytes"
	"log/slog"
	"time"

	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// maxErrorBodySize 失败响应体最多记录 4KB
const maxErrorBodySize = 4 * 1024

// errorBodyWriter 缓存响应体前 maxErrorBodySize 字节，只在请求失败时写入日志
type errorBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *errorBodyWriter) Write(b []byte) (int, error) {
	if remaining := maxErrorBodySize - w.body.Len(); remaining > 0 {
		if len(b) > remaining {
			w.body.Write(b[:remaining])
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// Logger 访问日志。成功的响应体里有地址、邮箱等信息，不落日志
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &errorBodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if p, ok := jwt.GetUserPayload(c); ok {
			args = append(args, "user_id", p.UserID)
		}
		if v, ok := c.Get(response.ErrorContextKey); ok {
			if e, ok := v.(*response.Error); ok {
				args = append(args, "code", e.Code)
			}
		}
		if status >= 400 {
			args = append(args, "response_body", w.body.String())
		}

		// 5xx 记为 Error，会作为 Sentry Event 上报
		switch {
		case status >= 500:
			log.Error("HTTP Request", args...)
		case status >= 400:
			log.Warn("HTTP Request", args...)
		default:
			log.Info("HTTP Request", args...)
		}
	}
}

// SentryEnrichIP 把客户端 IP 写入 Sentry Scope，放在 sentry.Middleware() 之后
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				clientIP := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: clientIP})
				scope.SetTag("client_ip", clientIP)
				if forwardedFor := c.GetHeader("X-Forwarded-For"); forwardedFor != "" {
					scope.SetTag("x_forwarded_for", forwardedFor)
				}
			})
		}
		c.Next()
	}
}
