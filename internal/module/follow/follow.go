package follow

import (
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type userUri struct {
	ID uint `uri:"id" binding:"required"`
}

func FollowUser(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri userUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if err := svc.Follow(c.Request.Context(), payload.UserID, uri.ID); err != nil {
		log.Warn("关注失败", "error", err, "follower_id", payload.UserID, "followee_id", uri.ID)
		response.Fail(c, err)
		return
	}
	response.Success(c)
}

func UnfollowUser(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var uri userUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if err := svc.Unfollow(c.Request.Context(), payload.UserID, uri.ID); err != nil {
		log.Error("取消关注失败", "error", err, "follower_id", payload.UserID, "followee_id", uri.ID)
		response.Fail(c, err)
		return
	}
	response.Success(c)
}

func ListFollowers(c *gin.Context) {
	var uri userUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	list, err := svc.Followers(c.Request.Context(), uri.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

func ListFollowing(c *gin.Context) {
	var uri userUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	list, err := svc.Following(c.Request.Context(), uri.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}
