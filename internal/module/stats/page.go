package stats

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 30
	maxPageSize     = 300
)

// getPage 从 page、page_size 查询参数计算 offset 和 limit，page 从 1 开始
func getPage(c *gin.Context) (offset, limit int) {
	limit, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	} else if limit > maxPageSize {
		limit = maxPageSize
	}
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 0, limit
	}
	return (page - 1) * limit, limit
}
