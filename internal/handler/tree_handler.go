package handler

import (
	"net/http"
	"strconv"
	"strings"

	"orgadmin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// treeAPI 是树形实体服务在 HTTP 层需要的最小操作面。
// 部门服务和权限服务都满足该接口，树路由只写一份。
type treeAPI[T any] interface {
	GetTree(rootID *uint64, depth int) ([]T, error)
	GetSiblings(nodeID uint64, includeSelf bool) ([]T, error)
	GetAncestors(nodeID uint64, includeSelf bool) ([]T, error)
	Move(nodeID uint64, newParentID *uint64) (T, error)
	BulkMove(nodeIDs []uint64, newParentID *uint64) ([]T, error)
	CopySubtree(nodeID uint64, newParentID *uint64) (T, error)
	Delete(nodeID uint64) error
}

// TreeHandler 承载树形实体的通用结构路由。
// 具体实体的 Handler（部门、权限）内嵌本类型并补充 Create/Update。
type TreeHandler[T any] struct {
	svc treeAPI[T]
}

// MoveRequest 是移动节点的请求体。parentId 为 null 或缺省表示提升为根节点。
type MoveRequest struct {
	ParentID *uint64 `json:"parentId"`
}

// BulkMoveRequest 是批量移动的请求体。
type BulkMoveRequest struct {
	IDs      []uint64 `json:"ids" binding:"required"`
	ParentID *uint64  `json:"parentId"`
}

// CopyRequest 是复制子树的请求体。parentId 为 null 表示复制为新的根节点。
type CopyRequest struct {
	ParentID *uint64 `json:"parentId"`
}

// GetTree 返回嵌套的树形结构。
// query 参数：
//   - rootId: 以该节点为根返回子树，缺省返回整片森林。
//   - depth:  根以下的最大层数，缺省不限制。
func (h *TreeHandler[T]) GetTree(c *gin.Context) {
	var rootID *uint64
	if raw := strings.TrimSpace(c.Query("rootId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Invalid rootId parameter",
			})
			return
		}
		rootID = &id
	}

	depth := -1
	if raw := strings.TrimSpace(c.Query("depth")); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Invalid depth parameter",
			})
			return
		}
		depth = d
	}

	tree, err := h.svc.GetTree(rootID, depth)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Tree retrieved successfully",
		"data":    tree,
	})
}

// GetSiblings 返回节点的同级节点，query 参数 includeSelf 控制是否包含自身。
func (h *TreeHandler[T]) GetSiblings(c *gin.Context) {
	nodeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	includeSelf := c.DefaultQuery("includeSelf", "false") == "true"

	siblings, err := h.svc.GetSiblings(nodeID, includeSelf)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Siblings retrieved successfully",
		"data":    siblings,
	})
}

// GetAncestors 返回从根到该节点的祖先链。
func (h *TreeHandler[T]) GetAncestors(c *gin.Context) {
	nodeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	includeSelf := c.DefaultQuery("includeSelf", "false") == "true"

	ancestors, err := h.svc.GetAncestors(nodeID, includeSelf)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Ancestors retrieved successfully",
		"data":    ancestors,
	})
}

// Move 把节点挂到新父节点下。
func (h *TreeHandler[T]) Move(c *gin.Context) {
	nodeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	node, err := h.svc.Move(nodeID, req.ParentID)
	if err != nil {
		log.Warnf("TreeHandler.Move: failed to move node %d: %v", nodeID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Node moved successfully",
		"data":    node,
	})
}

// BulkMove 批量移动节点，尽力而为：返回成功移动的那部分。
func (h *TreeHandler[T]) BulkMove(c *gin.Context) {
	var req BulkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	// 重复的 id 会让同一节点被移动两次，直接拒绝
	seen := make(map[uint64]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		if _, dup := seen[id]; dup {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Duplicate node ids in request",
			})
			return
		}
		seen[id] = struct{}{}
	}

	moved, err := h.svc.BulkMove(req.IDs, req.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Nodes moved successfully",
		"data": gin.H{
			"moved":     moved,
			"requested": len(req.IDs),
			"succeeded": len(moved),
		},
	})
}

// Copy 深拷贝节点及其子树到新父节点下。
func (h *TreeHandler[T]) Copy(c *gin.Context) {
	nodeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	copied, err := h.svc.CopySubtree(nodeID, req.ParentID)
	if err != nil {
		log.Warnf("TreeHandler.Copy: failed to copy node %d: %v", nodeID, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Subtree copied successfully",
		"data":    copied,
	})
}

// Delete 删除节点及其整棵子树。
func (h *TreeHandler[T]) Delete(c *gin.Context) {
	nodeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(nodeID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Node deleted successfully",
	})
}
