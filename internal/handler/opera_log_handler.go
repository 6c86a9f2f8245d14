package handler

import (
	"net/http"
	"strconv"
	"strings"

	"orgadmin_go/internal/service"

	"github.com/gin-gonic/gin"
)

// OperaLogHandler 负责操作日志检索接口（管理员路由）。
type OperaLogHandler struct {
	operaLogService service.OperaLogService
}

func NewOperaLogHandler(operaLogService service.OperaLogService) *OperaLogHandler {
	return &OperaLogHandler{operaLogService: operaLogService}
}

// Search 按关键字分页检索操作日志。
// query 参数：keyword（对操作人和路径做匹配）、page、size。
func (h *OperaLogHandler) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid page parameter",
		})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid size parameter",
		})
		return
	}

	logs, total, err := h.operaLogService.Search(c.Request.Context(), keyword, (page-1)*size, size)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Opera logs retrieved successfully",
		"data": gin.H{
			"content":       logs,
			"totalElements": total,
			"totalPages":    totalPages,
			"size":          size,
			"number":        page,
		},
	})
}
