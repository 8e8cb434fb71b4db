package user

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}

type userUri struct {
	ID uint `uri:"id" binding:"required"`
}

// Register 邮箱注册，出生日期必填
func Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定注册请求失败", "error", err, "email", req.Email)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	u, err := svc.Register(c.Request.Context(), req)
	if err != nil {
		log.Warn("用户注册失败", "error", err, "email", req.Email)
		response.Fail(c, err)
		return
	}
	log.Info("用户注册成功", "user_id", u.ID, "email", u.Email)
	response.Success(c, u)
}

func Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("用户登录失败", "error", err, "email", req.Email)
		response.Fail(c, err)
		return
	}
	log.Info("用户登录成功", "user_id", res.User.ID, "role_id", res.User.RoleID)
	response.Success(c, res)
}

func GetMe(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	u, err := svc.Me(c.Request.Context(), payload.UserID)
	if err != nil {
		log.Error("查询用户失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateMe 修改名字、头像和出生日期
func UpdateMe(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定修改资料请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	u, err := svc.UpdateProfile(c.Request.Context(), payload.UserID, req)
	if err != nil {
		log.Warn("修改资料失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, u)
}

func ChangePassword(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定修改密码请求失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if err := svc.ChangePassword(c.Request.Context(), payload.UserID, req.OldPassword, req.NewPassword); err != nil {
		log.Warn("修改密码失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	log.Info("用户修改密码成功", "user_id", payload.UserID)
	response.Success(c)
}

// GetProfile 他人的公开资料
func GetProfile(c *gin.Context) {
	var uri userUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	p, err := svc.Profile(c.Request.Context(), uri.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, p)
}
