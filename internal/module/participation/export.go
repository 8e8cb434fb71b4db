package participation

import (
	"fmt"
	"time"

	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"
	"social-event-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type participantInExcel struct {
	ID          uint      `excel:"报名ID"`
	UserID      uint      `excel:"用户ID"`
	FirstName   string    `excel:"名"`
	LastName    string    `excel:"姓"`
	Email       string    `excel:"邮箱"`
	Status      string    `excel:"状态"`
	RequestedAt time.Time `excel:"报名时间"`
	Rating      *int      `excel:"评分"`
	Comment     *string   `excel:"评价"`
}

func toExcelRows(items []OwnerItem) []participantInExcel {
	rows := make([]participantInExcel, 0, len(items))
	for _, it := range items {
		row := participantInExcel{
			ID:          it.ID,
			UserID:      it.UserID,
			FirstName:   it.User.FirstName,
			LastName:    it.User.LastName,
			Email:       it.Email,
			Status:      string(it.Status),
			RequestedAt: it.CreatedAt,
		}
		if it.ParticipantReview != nil {
			rating := it.ParticipantReview.Rating
			row.Rating = &rating
			row.Comment = it.ParticipantReview.Text
		}
		rows = append(rows, row)
	}
	return rows
}

// Export 组织者导出报名名单，顺序与审核列表一致
func Export(c *gin.Context) {
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

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("关闭 excel 文件失败", "error", err)
		}
	}()
	if err := tools.ExportToExcel(f, "Sheet1", toExcelRows(items)); err != nil {
		log.Error("导出 excel 错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	filename := fmt.Sprintf("event_%d_participants.xlsx", uri.EventID)
	if err := tools.SendExcel(c, f, filename); err != nil {
		log.Error("写出 excel 错误", "error", err)
	}
}
