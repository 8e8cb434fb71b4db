package review

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"github.com/gin-gonic/gin"
)

type eventUri struct {
	EventID uint `uri:"id" binding:"required"`
}

type rateReq struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Text   *string `json:"text" binding:"omitempty,max=2000"`
}

// RateEvent 参与者评价活动
func RateEvent(c *gin.Context) {
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
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定评价请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	r, err := svc.RateEvent(c.Request.Context(), uri.EventID, payload.UserID, req.Rating, req.Text)
	if err != nil {
		log.Warn("评价活动失败", "error", err, "event_id", uri.EventID, "user_id", payload.UserID)
		response.Fail(c, err)
		return
	}
	log.Info("评价活动", "event_id", uri.EventID, "user_id", payload.UserID, "rating", r.Rating)
	response.Success(c, r)
}

type participationUri struct {
	EventID         uint `uri:"id" binding:"required"`
	ParticipationID uint `uri:"pid" binding:"required"`
}

// RateParticipant 组织者评价参与者
func RateParticipant(c *gin.Context) {
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
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定评价请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	r, err := svc.RateParticipant(c.Request.Context(), uri.EventID, payload.UserID, uri.ParticipationID, req.Rating, req.Text)
	if err != nil {
		log.Warn("评价参与者失败", "error", err, "event_id", uri.EventID, "participation_id", uri.ParticipationID)
		response.Fail(c, err)
		return
	}
	response.Success(c, r)
}

type ratingQuery struct {
	Rating *int               `form:"rating" binding:"omitempty,min=1,max=5"`
	Type   model.ReviewTarget `form:"type"`
}

// List 活动的评价列表
func List(c *gin.Context) {
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	var q ratingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	items, err := svc.List(c.Request.Context(), uri.EventID, q.Rating)
	if err != nil {
		log.Error("查询活动评价失败", "error", err, "event_id", uri.EventID)
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

// Mine 当前用户对活动的评价，没有评价时 data 为 null
func Mine(c *gin.Context) {
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

	r, err := svc.Mine(c.Request.Context(), uri.EventID, payload.UserID)
	if err != nil {
		log.Error("查询我的评价失败", "error", err, "event_id", uri.EventID)
		response.Fail(c, err)
		return
	}
	response.Success(c, r)
}

type userUri struct {
	UserID uint `uri:"id" binding:"required"`
}

// ForUser 用户收到的评价，type=event 为其组织的活动收到的评价，type=participant 为其作为参与者收到的评价
func ForUser(c *gin.Context) {
	var uri userUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	var q ratingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	items, err := svc.ForUser(c.Request.Context(), uri.UserID, q.Type, q.Rating)
	if err != nil {
		log.Error("查询用户评价失败", "error", err, "user_id", uri.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}
