package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
	"taskflow/internal/services"
)

const identityKey = "identity"

// Authenticate resolves the bearer token into the caller identity and stores
// it on the gin context. Requests without a valid token are rejected with 401.
func Authenticate(auth services.AuthService, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.AuthFailure("missing_token")
			abort(c, apperr.Unauthenticated("Not authorized, no token"))
			return
		}

		id, err := auth.Authenticate(tokenStr)
		if err != nil {
			m.AuthFailure("invalid_token")
			abort(c, err)
			return
		}

		SetIdentity(c, id)
		log := logger.FromContext(c.Request.Context()).With("user", id.ID, "role", id.Role)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func SetIdentity(c *gin.Context, id authz.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller set by Authenticate.
func IdentityFrom(c *gin.Context) (authz.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return authz.Identity{}, false
	}
	id, ok := v.(authz.Identity)
	return id, ok
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.KindOf(err).HTTPStatus(), gin.H{
		"success": false,
		"error":   apperr.PublicMessage(err),
	})
}
