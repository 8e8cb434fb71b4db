package user

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

// InitRouter 注册、登录和个人资料。/users/:id 为公开资料
func (*ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user")
	{
		userGroup.POST("/register", Register)
		userGroup.POST("/login", Login)
	}

	meGroup := r.Group("/user", middleware.Auth(jwt.RoleUser))
	{
		meGroup.GET("/me", GetMe)
		meGroup.PUT("/me", UpdateMe)
		meGroup.PUT("/password", ChangePassword)
	}

	r.GET("/users/:id", middleware.Auth(jwt.RoleUser), GetProfile)
}
