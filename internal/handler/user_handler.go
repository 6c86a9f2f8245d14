package handler

import (
	"net/http"
	"strconv"
	"time"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/service"
	"orgadmin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责用户域相关 HTTP 接口。
// 注意：该 Handler 同时承载两类路由：
// 1. 普通用户路由（注册、登录、个人信息、改密）
// 2. 管理员用户管理路由（列表、角色/部门分配）
// 是否允许访问由路由组挂载的中间件决定，而不是靠 Handler 类型区分。
type UserHandler struct {
	userService     service.UserService
	loginLogService service.LoginLogService
}

// NewUserHandler 创建 UserHandler。loginLogService 为 nil 时不记录登录日志。
func NewUserHandler(userService service.UserService, loginLogService service.LoginLogService) *UserHandler {
	return &UserHandler{userService: userService, loginLogService: loginLogService}
}

// recordLogin 异步落一条登录日志，成功与失败都记。
func (h *UserHandler) recordLogin(c *gin.Context, username string, status int8, message string) {
	if h.loginLogService == nil {
		return
	}
	entry := &model.LoginLog{
		Username:  username,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Status:    status,
		Message:   message,
	}
	go h.loginLogService.Record(entry)
}

// RegisterRequest 是注册接口请求体。
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 是登录接口请求体。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 是修改密码接口请求体。
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdateUserRequest 是管理员更新用户的请求体。
type UpdateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Role     string  `json:"role" binding:"required"`
	DeptID   *uint64 `json:"deptId"`
	Status   int8    `json:"status"`
}

// ProfileResponse 是个人信息接口响应结构，不回传密码哈希之外的敏感细节。
type ProfileResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	DeptID    *uint64   `json:"deptId,omitempty"`
	Status    int8      `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Register 处理用户注册请求。
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.userService.Register(req.Username, req.Password)
	if err != nil {
		log.Warnf("Register: failed to register user: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "User registered successfully",
		"data":    user,
	})
}

// Login 处理登录请求并返回 access/refresh token。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	accessToken, refreshToken, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Warnf("Login: failed to login user: %v", err)
		h.recordLogin(c, req.Username, model.LoginStatusFailure, err.Error())
		respondServiceError(c, err)
		return
	}
	h.recordLogin(c, req.Username, model.LoginStatusSuccess, "login successful")

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Login successful",
		"data": gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}

// Logout 处理退出登录。
// 逻辑：从 Authorization 头提取 token，再交由 service 做黑名单处理。
func (h *UserHandler) Logout(c *gin.Context) {
	tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		log.Warnf("Logout: invalid authorization header: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"error":   "Unauthorized",
			"message": "Invalid authorization header",
		})
		return
	}

	if err := h.userService.Logout(c.Request.Context(), tokenString); err != nil {
		log.Warnf("Logout: failed to logout user: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Logout successful",
	})
}

// GetProfile 返回当前登录用户信息。
// 用户对象由 AuthMiddleware 注入到上下文中。
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Profile retrieved successfully",
		"data": ProfileResponse{
			ID:        user.ID,
			Username:  user.Username,
			Role:      user.Role,
			DeptID:    user.DeptID,
			Status:    user.Status,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
	})
}

// ChangePassword 修改当前登录用户的密码。
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	user, ok := getUserFromContext(c)
	if !ok {
		return
	}

	if err := h.userService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		log.Warnf("ChangePassword: failed for user %d: %v", user.ID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Password changed successfully",
	})
}

// ListUsers 管理员分页查询用户列表。
func (h *UserHandler) ListUsers(c *gin.Context) {
	pageRaw := c.DefaultQuery("page", "1")
	sizeRaw := c.DefaultQuery("size", "10")

	page, err := strconv.Atoi(pageRaw)
	if err != nil || page <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid page parameter",
		})
		return
	}

	size, err := strconv.Atoi(sizeRaw)
	if err != nil || size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid size parameter",
		})
		return
	}

	users, total, err := h.userService.List((page-1)*size, size)
	if err != nil {
		log.Warnf("ListUsers: failed to list users: %v", err)
		respondServiceError(c, err)
		return
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Users retrieved successfully",
		"data": gin.H{
			"content":       users,
			"totalElements": total,
			"totalPages":    totalPages,
			"size":          size,
			"number":        page,
		},
	})
}

// UpdateUser 管理员更新指定用户的角色、部门和状态。
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.userService.UpdateUser(userID, req.Username, req.Role, req.DeptID, req.Status)
	if err != nil {
		log.Warnf("UpdateUser: failed to update user %d: %v", userID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "User updated successfully",
		"data":    user,
	})
}
