package handler

import (
	"net/http"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/service"
	"orgadmin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// PermissionHandler 负责权限（菜单）树管理接口。
type PermissionHandler struct {
	TreeHandler[*model.Permission]
	permService service.PermissionService
}

func NewPermissionHandler(permService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		TreeHandler: TreeHandler[*model.Permission]{svc: permService},
		permService: permService,
	}
}

// PermissionRequest 是创建/更新权限节点的请求体。
type PermissionRequest struct {
	Name      string  `json:"name" binding:"required"`
	Code      string  `json:"code" binding:"required"`
	PermType  string  `json:"permType" binding:"required"`
	Status    int8    `json:"status"`
	SortOrder int     `json:"sortOrder"`
	ParentID  *uint64 `json:"parentId"`
}

// Create 创建权限节点。
func (h *PermissionHandler) Create(c *gin.Context) {
	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	perm, err := h.permService.Create(service.PermissionInput{
		Name:      req.Name,
		Code:      req.Code,
		PermType:  req.PermType,
		Status:    req.Status,
		SortOrder: req.SortOrder,
	}, req.ParentID)
	if err != nil {
		log.Warnf("PermissionHandler.Create: failed to create permission: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Permission created successfully",
		"data":    perm,
	})
}

// Update 更新权限节点。
func (h *PermissionHandler) Update(c *gin.Context) {
	permID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	perm, err := h.permService.Update(permID, service.PermissionInput{
		Name:      req.Name,
		Code:      req.Code,
		PermType:  req.PermType,
		Status:    req.Status,
		SortOrder: req.SortOrder,
	}, req.ParentID, req.ParentID != nil)
	if err != nil {
		log.Warnf("PermissionHandler.Update: failed to update permission %d: %v", permID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Permission updated successfully",
		"data":    perm,
	})
}
