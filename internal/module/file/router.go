package file

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleFile) InitRouter(r *gin.RouterGroup) {
	fileGroup := r.Group("/files", middleware.Auth(jwt.RoleUser))
	{
		fileGroup.POST("/presign", Presign)
		fileGroup.POST("/upload", Upload)
	}
}
