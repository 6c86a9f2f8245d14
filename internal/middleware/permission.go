package middleware

import (
	"net/http"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/service"

	"github.com/gin-gonic/gin"
)

// RequirePermission 是 RBAC 鉴权中间件，检查当前用户的角色是否持有指定权限编码。
// 必须在 AuthMiddleware 之后执行，依赖上下文中已注入的 user。
// ADMIN 角色直接放行，不查授权表。
func RequirePermission(roleService service.RoleService, permCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "User not found in context",
			})
			return
		}
		user, ok := userVal.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Failed to get user profile",
			})
			return
		}

		// 超级管理员绕过授权表
		if user.Role == model.RoleAdmin {
			c.Next()
			return
		}

		codes, err := roleService.ResolvePermissionCodes(c.Request.Context(), user.Role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}
		for _, code := range codes {
			if code == permCode {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    http.StatusForbidden,
			"message": "Forbidden: missing permission " + permCode,
		})
	}
}

// AdminAuthMiddleware 只允许 ADMIN 角色通过，用于用户管理等不走授权表的接口。
// 必须在 AuthMiddleware 之后执行。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "User not found in context",
			})
			return
		}
		user, ok := userVal.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Failed to get user profile",
			})
			return
		}
		if user.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "Forbidden: Only admin can access this resource",
			})
			return
		}
		c.Next()
	}
}
