package participation

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"github.com/gin-gonic/gin"
)

type eventUri struct {
	EventID uint `uri:"id" binding:"required"`
}

type participationUri struct {
	EventID         uint `uri:"id" binding:"required"`
	ParticipationID uint `uri:"pid" binding:"required"`
}

// RequestJoin 申请参加活动
func RequestJoin(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	res, err := svc.RequestJoin(c.Request.Context(), uri.EventID, payload.UserID)
	if err != nil {
		log.Warn("申请参加活动失败", "error", err, "event_id", uri.EventID, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	log.Info("申请参加活动", "event_id", uri.EventID, "user_id", payload.UserID, "status", res.Status)
	response.Success(c, res)
}

// GetMine 当前用户在活动中的参与状态
func GetMine(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	view, err := svc.Get(c.Request.Context(), uri.EventID, payload.UserID)
	if err != nil {
		log.Error("查询参与状态失败", "error", err, "event_id", uri.EventID, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

// CancelMine 取消参加
func CancelMine(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	p, err := svc.Cancel(c.Request.Context(), uri.EventID, payload.UserID)
	if err != nil {
		log.Warn("取消参加失败", "error", err, "event_id", uri.EventID, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	log.Info("取消参加", "event_id", uri.EventID, "user_id", payload.UserID)
	response.Success(c, p)
}

// ListForOwner 组织者查看报名列表
func ListForOwner(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	items, err := svc.ListForOwner(c.Request.Context(), uri.EventID, payload.UserID)
	if err != nil {
		log.Error("查询报名列表失败", "error", err, "event_id", uri.EventID)
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

type setStatusReq struct {
	Status model.ParticipationStatus `json:"status" binding:"required"`
}

// SetStatus 组织者审核：通过、拒绝、取消或标记到场
func SetStatus(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri participationUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定审核请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	p, err := svc.SetStatus(c.Request.Context(), uri.EventID, payload.UserID, uri.ParticipationID, req.Status)
	if err != nil {
		log.Warn("修改参与状态失败", "error", err, "event_id", uri.EventID, "participation_id", uri.ParticipationID, "status", req.Status)
		response.Fail(c, err)
		return
	}
	log.Info("修改参与状态", "event_id", uri.EventID, "participation_id", uri.ParticipationID, "status", p.Status)
	response.Success(c, p)
}
