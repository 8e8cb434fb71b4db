package participation

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleParticipation) InitRouter(r *gin.RouterGroup) {
	participationGroup := r.Group("/events/:id/participations", middleware.Auth(jwt.RoleUser))
	{
		// 参与者
		participationGroup.POST("", RequestJoin)
		participationGroup.GET("/me", GetMine)
		participationGroup.DELETE("/me", CancelMine)

		// 组织者
		participationGroup.GET("", ListForOwner)
		participationGroup.GET("/export", Export)
		participationGroup.PATCH("/:pid", SetStatus)
	}
}
