package handler

import (
	"net/http"
	"strconv"
	"strings"

	"orgadmin_go/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginLogHandler 负责登录日志检索接口（管理员路由）。
type LoginLogHandler struct {
	loginLogService service.LoginLogService
}

func NewLoginLogHandler(loginLogService service.LoginLogService) *LoginLogHandler {
	return &LoginLogHandler{loginLogService: loginLogService}
}

// List 按用户名分页检索登录日志。
// query 参数：username（模糊匹配）、page、size。
func (h *LoginLogHandler) List(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))

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

	logs, total, err := h.loginLogService.List(username, (page-1)*size, size)
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
		"message": "Login logs retrieved successfully",
		"data": gin.H{
			"content":       logs,
			"totalElements": total,
			"totalPages":    totalPages,
			"size":          size,
			"number":        page,
		},
	})
}
