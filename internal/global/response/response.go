package response

import (
	"fmt"
	"net/http"

	"social-event-system/config"
	"social-event-system/internal/global/sentry"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
)

// ResponseBody 统一响应结构
type ResponseBody struct {
	Code   int32  `json:"code"`
	Msg    string `json:"msg"`
	Origin string `json:"origin,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func Success(c *gin.Context, data ...any) {
	body := ResponseBody{Code: CodeSuccess, Msg: "success"}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.Set(ResponseContextKey, body)
	c.JSON(http.StatusOK, body)
}

// Fail 返回错误响应。Origin 只在 debug 模式下透出
func Fail(c *gin.Context, err error) {
	e := From(err)
	body := ResponseBody{Code: e.Code, Msg: e.Message}
	if config.Get().Mode == config.ModeDebug {
		body.Origin = e.Origin
	}
	c.Set(ErrorContextKey, e)
	sentry.CaptureException(c, e)
	c.Set(ResponseContextKey, body)
	c.AbortWithStatusJSON(e.HTTPStatus(), body)
}

// Recovery 在 defer 中调用，把 panic 转成 500 响应
func Recovery(c *gin.Context) {
	r := recover()
	if r == nil {
		return
	}
	var err error
	switch v := r.(type) {
	case error:
		err = pkgerrors.WithStack(v)
	default:
		err = pkgerrors.New(fmt.Sprint(v))
	}
	Fail(c, ErrServerInternal.WithOrigin(err))
}
