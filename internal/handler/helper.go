package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/service"

	"github.com/gin-gonic/gin"
)

// mapServiceError 把 Service 层哨兵错误转换为 HTTP 状态码和对外消息。
// 统一映射的价值：
// 1. Handler 不必散落大量 if/else 判断。
// 2. 对外返回口径稳定，避免泄露内部实现细节。
func mapServiceError(err error) (httpStatus int, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request parameters"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrNodeNotFound):
		return http.StatusNotFound, "Node not found"
	case errors.Is(err, service.ErrParentNotFound):
		return http.StatusNotFound, "Parent node not found"
	case errors.Is(err, service.ErrTreeCycle):
		return http.StatusConflict, "Cannot move a node under its own descendant"
	case errors.Is(err, service.ErrTreeDepthExceeded):
		return http.StatusConflict, "Tree depth limit exceeded"
	case errors.Is(err, service.ErrCodeAlreadyExists):
		return http.StatusConflict, "Code already exists"
	case errors.Is(err, service.ErrRoleNotFound):
		return http.StatusNotFound, "Role not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondServiceError 写出统一的错误响应体。
func respondServiceError(c *gin.Context, err error) {
	status, msg := mapServiceError(err)
	c.JSON(status, gin.H{
		"code":    status,
		"message": msg,
	})
}

// parseIDParam 解析路径中的数字 ID 参数，非法时直接写 400 并返回 false。
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}

// extractBearerToken 从 Authorization 请求头提取 Bearer Token。
// 期望格式：Authorization: Bearer <token>
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}

// getUserFromContext 从 Gin 上下文中读取 AuthMiddleware 注入的用户对象。
// 如果上下文异常，该函数会直接写错误响应并返回 false，调用方只需 `if !ok { return }`。
func getUserFromContext(c *gin.Context) (*model.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"error":   "Unauthorized",
			"message": "User not found in context",
		})
		return nil, false
	}

	user, ok := userVal.(*model.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"error":   "Internal server error",
			"message": "Failed to get user profile",
		})
		return nil, false
	}
	return user, true
}
