package event

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleEvent) InitRouter(r *gin.RouterGroup) {
	r.GET("/categories", ListCategories)

	eventGroup := r.Group("/events")
	{
		// 游客也能浏览，登录后按身份过滤
		eventGroup.GET("", middleware.OptionalAuth(), ListEvents)
		eventGroup.GET("/:id", middleware.OptionalAuth(), GetEvent)
	}

	authGroup := r.Group("/events", middleware.Auth(jwt.RoleUser))
	{
		authGroup.GET("/participating", ListParticipating)
		authGroup.GET("/mine", ListMine)
		authGroup.POST("", CreateEvent)
		authGroup.PUT("/:id", UpdateEvent)
		authGroup.PATCH("/:id/status", SetEventStatus)
		authGroup.DELETE("/:id", DeleteEvent)
	}
}
