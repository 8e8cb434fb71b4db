package middleware

import (
	"strings"

	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

// Auth 要求登录且角色不低于 minRoleID
func Auth(minRoleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := parseBearer(c)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if payload == nil {
			response.Fail(c, response.ErrUnauthorized)
			return
		}
		if payload.RoleID < minRoleID {
			response.Fail(c, response.ErrForbidden)
			return
		}
		c.Set(jwt.PayloadContextKey, payload)
		c.Next()
	}
}

// OptionalAuth 带 token 时解析身份，不带时以游客身份继续；token 无效直接拒绝
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := parseBearer(c)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if payload != nil {
			c.Set(jwt.PayloadContextKey, payload)
		}
		c.Next()
	}
}

// parseBearer 没有 Authorization 头时返回 (nil, nil)
func parseBearer(c *gin.Context) (*jwt.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, response.ErrTokenInvalid
	}
	payload, valid := jwt.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if !valid {
		return nil, response.ErrTokenInvalid
	}
	return payload, nil
}
