package review

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleReview) InitRouter(r *gin.RouterGroup) {
	eventGroup := r.Group("/events/:id", middleware.Auth(jwt.RoleUser))
	{
		eventGroup.POST("/reviews", RateEvent)
		eventGroup.GET("/reviews", List)
		eventGroup.GET("/reviews/me", Mine)
		eventGroup.POST("/participations/:pid/rating", RateParticipant)
	}

	r.GET("/users/:id/reviews", middleware.Auth(jwt.RoleUser), ForUser)
}
