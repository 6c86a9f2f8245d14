package handler

import (
	"net/http"

	"orgadmin_go/internal/service"
	"orgadmin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RoleHandler 负责角色与授权管理接口（管理员路由）。
type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// CreateRoleRequest 是创建角色的请求体。
type CreateRoleRequest struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

// GrantRequest 是角色授权的请求体，permissionIds 整体替换现有授权。
type GrantRequest struct {
	PermissionIDs []uint64 `json:"permissionIds" binding:"required"`
}

// Create 创建角色。
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	role, err := h.roleService.Create(req.Code, req.Name, req.Notes)
	if err != nil {
		log.Warnf("RoleHandler.Create: failed to create role: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Role created successfully",
		"data":    role,
	})
}

// List 返回角色列表。
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Roles retrieved successfully",
		"data":    roles,
	})
}

// Delete 删除角色及其全部授权。
func (h *RoleHandler) Delete(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.Delete(roleID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Role deleted successfully",
	})
}

// Grant 整体替换角色的权限集合。
func (h *RoleHandler) Grant(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	if err := h.roleService.Grant(roleID, req.PermissionIDs); err != nil {
		log.Warnf("RoleHandler.Grant: failed to grant role %d: %v", roleID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Role permissions granted successfully",
	})
}
