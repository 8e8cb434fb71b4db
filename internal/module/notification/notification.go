package notification

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type unreadResp struct {
	Unread int64 `json:"unread"`
}

// List 当前用户最近的通知
func List(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	list, err := svc.List(c.Request.Context(), payload.UserID)
	if err != nil {
		log.Error("查询通知失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

func UnreadCount(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	n, err := svc.UnreadCount(c.Request.Context(), payload.UserID)
	if err != nil {
		log.Error("查询未读数失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, unreadResp{Unread: n})
}

type notificationUri struct {
	ID uint `uri:"id" binding:"required"`
}

func MarkRead(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri notificationUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	n, err := svc.MarkRead(c.Request.Context(), payload.UserID, uri.ID)
	if err != nil {
		log.Error("标记已读失败", "error", err, "user_id", payload.UserID, "id", uri.ID)
		response.Fail(c, err)
		return
	}
	response.Success(c, unreadResp{Unread: n})
}

func MarkAllRead(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	n, err := svc.MarkAllRead(c.Request.Context(), payload.UserID)
	if err != nil {
		log.Error("全部标记已读失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, unreadResp{Unread: n})
}

func GetPreferences(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	pref, err := svc.Preferences(c.Request.Context(), payload.UserID)
	if err != nil {
		log.Error("查询通知偏好失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, pref)
}

func UpdatePreferences(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req PreferenceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定通知偏好请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	pref, err := svc.UpdatePreferences(c.Request.Context(), payload.UserID, req)
	if err != nil {
		log.Error("更新通知偏好失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, pref)
}

type registerDeviceReq struct {
	Token    string `json:"token" binding:"required,max=255"`
	Platform string `json:"platform" binding:"omitempty,oneof=android ios web"`
}

func RegisterDevice(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req registerDeviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定设备注册请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if err := svc.RegisterDevice(c.Request.Context(), payload.UserID, req.Token, req.Platform); err != nil {
		log.Error("注册设备失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c)
}

type deviceUri struct {
	Token string `uri:"token" binding:"required"`
}

func RemoveDevice(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri deviceUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if err := svc.RemoveDevice(c.Request.Context(), payload.UserID, uri.Token); err != nil {
		log.Error("注销设备失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c)
}
