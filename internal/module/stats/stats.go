package stats

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type eventUri struct {
	ID uint `uri:"id" binding:"required"`
}

type historyResp struct {
	Total int64         `json:"total"`
	Items []HistoryItem `json:"items"`
}

// History 我参加过的活动
func History(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	offset, limit := getPage(c)
	items, total, err := svc.History(c.Request.Context(), user.UserID, offset, limit)
	if err != nil {
		log.Error("查询参加记录失败", "error", err, "user_id", user.UserID)
		response.Fail(c, err)
		return
	}
	response.Success(c, historyResp{Total: total, Items: items})
}

// Brief 活动报名和评价概况
func Brief(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri eventUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	res, err := svc.Brief(c.Request.Context(), uri.ID, user.UserID)
	if err != nil {
		log.Warn("查询活动概况失败", "error", err, "id", uri.ID)
		response.Fail(c, err)
		return
	}
	response.Success(c, res)
}
