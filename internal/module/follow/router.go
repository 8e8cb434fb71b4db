package follow

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleFollow) InitRouter(r *gin.RouterGroup) {
	followGroup := r.Group("/users/:id", middleware.Auth(jwt.RoleUser))
	{
		followGroup.POST("/follow", FollowUser)
		followGroup.DELETE("/follow", UnfollowUser)
		followGroup.GET("/followers", ListFollowers)
		followGroup.GET("/following", ListFollowing)
	}
}
