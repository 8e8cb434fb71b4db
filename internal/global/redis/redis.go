package redis

import (
	"context"
	"net"
	"time"

	"social-event-system/config"
	"social-event-system/internal/global/sentry/tracing"
	"social-event-system/tools"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func Init() {
	cfg := config.Get().Redis
	RedisClient = New(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tools.PanicOnErr(RedisClient.Ping(ctx).Err())
}

// New 创建客户端并挂上 Sentry hook，测试里用 miniredis 的地址调用
func New(opts *redis.Options) *redis.Client {
	client := redis.NewClient(opts)
	if tracing.IsEnabled() {
		client.AddHook(tracing.NewRedisSentryHook())
	}
	return client
}
