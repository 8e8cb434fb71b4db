package stats

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleStats) InitRouter(r *gin.RouterGroup) {
	statsGroup := r.Group("/stats", middleware.Auth(jwt.RoleUser))
	{
		statsGroup.GET("/history", History)
		statsGroup.GET("/events/:id/brief", Brief)
	}
}
