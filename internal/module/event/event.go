package event

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"github.com/gin-gonic/gin"
)

type eventUri struct {
	ID uint `uri:"id" binding:"required"`
}

// ListEvents 活动列表，支持城市、分类、收费、创建者和距离筛选
func ListEvents(c *gin.Context) {
	var req ListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		log.Error("绑定查询参数失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	list, err := svc.List(c.Request.Context(), jwt.ViewerID(c), req)
	if err != nil {
		log.Error("查询活动列表失败", "error", err)
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// ListMine 我创建的活动，包括草稿
func ListMine(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	id := payload.UserID
	list, err := svc.List(c.Request.Context(), &id, ListFilter{Owner: "me"})
	if err != nil {
		log.Error("查询我的活动失败", "error", err, "user_id", id)
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// ListParticipating 我报名中和已通过的活动
func ListParticipating(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	list, err := svc.Participating(c.Request.Context(), payload.UserID)
	if err != nil {
		log.Error("查询参加的活动失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// GetEvent 活动详情
func GetEvent(c *gin.Context) {
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	view, err := svc.Get(c.Request.Context(), uri.ID, jwt.ViewerID(c))
	if err != nil {
		log.Warn("查询活动失败", "error", err, "id", uri.ID)
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

// CreateEvent 创建活动
func CreateEvent(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req Input
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定创建活动请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	e, err := svc.Create(c.Request.Context(), payload.UserID, req)
	if err != nil {
		log.Error("创建活动失败", "error", err, "owner_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	log.Info("活动创建成功", "id", e.ID, "title", e.Title, "owner_id", payload.UserID)
	response.Success(c, e)
}

// UpdateEvent 修改活动，只传需要修改的字段
func UpdateEvent(c *gin.Context) {
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
	var req Update
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新活动请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	e, err := svc.Update(c.Request.Context(), uri.ID, payload.UserID, req)
	if err != nil {
		log.Warn("更新活动失败", "error", err, "id", uri.ID)
		response.Fail(c, err)
		return
	}
	log.Info("活动更新成功", "id", e.ID)
	response.Success(c, e)
}

type setStatusReq struct {
	Status model.EventStatus `json:"status" binding:"required"`
}

// SetEventStatus 发布或撤回为草稿
func SetEventStatus(c *gin.Context) {
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
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	e, err := svc.SetStatus(c.Request.Context(), uri.ID, payload.UserID, req.Status)
	if err != nil {
		log.Warn("修改活动状态失败", "error", err, "id", uri.ID, "status", req.Status)
		response.Fail(c, err)
		return
	}
	response.Success(c, e)
}

// DeleteEvent 删除活动
func DeleteEvent(c *gin.Context) {
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

	if err := svc.Delete(c.Request.Context(), uri.ID, payload.UserID); err != nil {
		log.Warn("删除活动失败", "error", err, "id", uri.ID)
		response.Fail(c, err)
		return
	}
	log.Info("活动已删除", "id", uri.ID, "owner_id", payload.UserID)
	response.Success(c)
}

func ListCategories(c *gin.Context) {
	list, err := svc.Categories(c.Request.Context())
	if err != nil {
		log.Error("查询分类失败", "error", err)
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}
