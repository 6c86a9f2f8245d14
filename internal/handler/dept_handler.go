package handler

import (
	"net/http"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/service"
	"orgadmin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DeptHandler 负责部门管理接口。树结构路由由内嵌的 TreeHandler 承担。
type DeptHandler struct {
	TreeHandler[*model.Dept]
	deptService service.DeptService
}

func NewDeptHandler(deptService service.DeptService) *DeptHandler {
	return &DeptHandler{
		TreeHandler: TreeHandler[*model.Dept]{svc: deptService},
		deptService: deptService,
	}
}

// CreateDeptRequest 是创建部门的请求体。
// parentId 使用指针以区分根节点（null/缺省）和挂在某个父节点下。
type CreateDeptRequest struct {
	Name      string  `json:"name" binding:"required"`
	Code      string  `json:"code" binding:"required"`
	Leader    string  `json:"leader"`
	Phone     string  `json:"phone"`
	Status    int8    `json:"status"`
	Notes     string  `json:"notes"`
	SortOrder int     `json:"sortOrder"`
	ParentID  *uint64 `json:"parentId"`
}

// UpdateDeptRequest 是更新部门的请求体。
// parentId 传了且与当前父节点不同时触发移动；提升为根请走 move 接口。
type UpdateDeptRequest struct {
	Name      string  `json:"name" binding:"required"`
	Code      string  `json:"code" binding:"required"`
	Leader    string  `json:"leader"`
	Phone     string  `json:"phone"`
	Status    int8    `json:"status"`
	Notes     string  `json:"notes"`
	SortOrder int     `json:"sortOrder"`
	ParentID  *uint64 `json:"parentId"`
}

// Create 创建部门。
func (h *DeptHandler) Create(c *gin.Context) {
	var req CreateDeptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	dept, err := h.deptService.Create(service.DeptInput{
		Name:      req.Name,
		Code:      req.Code,
		Leader:    req.Leader,
		Phone:     req.Phone,
		Status:    req.Status,
		Notes:     req.Notes,
		SortOrder: req.SortOrder,
	}, req.ParentID)
	if err != nil {
		log.Warnf("DeptHandler.Create: failed to create dept: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Department created successfully",
		"data":    dept,
	})
}

// Update 更新部门。
func (h *DeptHandler) Update(c *gin.Context) {
	deptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDeptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	dept, err := h.deptService.Update(deptID, service.DeptInput{
		Name:      req.Name,
		Code:      req.Code,
		Leader:    req.Leader,
		Phone:     req.Phone,
		Status:    req.Status,
		Notes:     req.Notes,
		SortOrder: req.SortOrder,
	}, req.ParentID, req.ParentID != nil)
	if err != nil {
		log.Warnf("DeptHandler.Update: failed to update dept %d: %v", deptID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Department updated successfully",
		"data":    dept,
	})
}
