package notification

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleNotification) InitRouter(r *gin.RouterGroup) {
	notificationGroup := r.Group("/notifications", middleware.Auth(jwt.RoleUser))
	{
		notificationGroup.GET("", List)
		notificationGroup.GET("/unread-count", UnreadCount)
		notificationGroup.POST("/:id/read", MarkRead)
		notificationGroup.POST("/read-all", MarkAllRead)
		notificationGroup.GET("/preferences", GetPreferences)
		notificationGroup.PUT("/preferences", UpdatePreferences)
	}

	deviceGroup := r.Group("/devices", middleware.Auth(jwt.RoleUser))
	{
		deviceGroup.POST("", RegisterDevice)
		deviceGroup.DELETE("/:token", RemoveDevice)
	}
}
