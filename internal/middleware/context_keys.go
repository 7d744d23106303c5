package middleware

import (
	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey      = contextKey("userID")
	tenantIDKey    = contextKey("tenantID")
	permissionsKey = contextKey("permissions")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetTenantIDFromContext retrieves the caller's tenant ID from the Gin context.
// The tenant ID is passed explicitly down the service and repository layers;
// this is its single extraction point.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	tenantID, ok := c.Request.Context().Value(tenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}

// GetPermissionsFromContext retrieves the caller's permission set from the Gin context.
func GetPermissionsFromContext(c *gin.Context) (domain.PermissionSet, bool) {
	perms, ok := c.Request.Context().Value(permissionsKey).(domain.PermissionSet)
	return perms, ok
}
