package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finledger/finledger_backend/internal/middleware"
)

// callerIdentity extracts the tenant and user from the authenticated request,
// writing the 401 response itself when either is missing.
func callerIdentity(c *gin.Context) (tenantID, userID string, ok bool) {
	tenantID, tenantOK := middleware.GetTenantIDFromContext(c)
	userID, userOK := middleware.GetUserIDFromContext(c)
	if !tenantOK || !userOK {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Caller identity missing from context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "missing caller identity"})
		return "", "", false
	}
	return tenantID, userID, true
}

func registerHomeRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}
