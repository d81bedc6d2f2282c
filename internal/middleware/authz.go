package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
)

// RequireRoles admits the caller only if its role is in allowed.
// Must run after Authenticate.
func RequireRoles(allowed authz.RoleSet, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abort(c, apperr.Unauthenticated("Not authorized, no token"))
			return
		}
		if !id.Authorize(allowed) {
			m.AuthFailure("forbidden")
			logger.FromContext(c.Request.Context()).Warn("[authz][deny]", "path", c.FullPath(), "role", id.Role)
			abort(c, apperr.Forbidden(fmt.Sprintf("User role %s is not authorized to access this route", id.Role)))
			return
		}
		c.Next()
	}
}
