package ping

import (
	"context"
	"time"

	"social-event-system/internal/global/database"
	"social-event-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, map[string]any{
			"message": "pong",
			"version": "1.0.0",
		})
	})
	r.GET("/health", Health)
}

// Health 检查数据库连接，供负载均衡探活
func Health(c *gin.Context) {
	sqlDB, err := database.DB.DB()
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("数据库探活失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, map[string]any{"database": "ok"})
}
