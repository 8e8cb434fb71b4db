package jwt

import (
	"github.com/gin-gonic/gin"
)

const PayloadContextKey = "payload"

func GetUserPayload(c *gin.Context) (userPayload *Claims, exist bool) {
	payload, _ := c.Get(PayloadContextKey)
	userPayload, exist = payload.(*Claims)
	return
}

// ViewerID 可选登录接口使用，未登录时返回 nil
func ViewerID(c *gin.Context) *uint {
	if p, ok := GetUserPayload(c); ok {
		id := p.UserID
		return &id
	}
	return nil
}
