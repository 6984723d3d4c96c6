// File: internal/middleware/rbac.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/rbac"
)

// RequirePermission lets the request through when the caller's role holds any of perms.
func RequirePermission(perms ...rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rbac.HasAnyPermission(RoleFromContext(c), perms...) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails(gin.H{"required_any": perms}))
			return
		}
		c.Next()
	}
}

// RequireAllPermissions lets the request through only when the caller's role holds every one of perms.
func RequireAllPermissions(perms ...rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rbac.HasAllPermissions(RoleFromContext(c), perms...) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails(gin.H{"required_all": perms}))
			return
		}
		c.Next()
	}
}
