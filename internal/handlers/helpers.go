package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/logger"
	"taskflow/internal/middleware"
)

// respondError logs err under tag and writes the failure envelope.
// Internal errors keep their cause in the log only.
func respondError(c *gin.Context, tag string, err error) {
	log := logger.FromContext(c.Request.Context())
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindInternal:
		log.Error(tag+"[err]", "err", err)
	case apperr.KindForbidden, apperr.KindUnauthenticated:
		log.Warn(tag+"[deny]", "err", err)
	default:
		log.Info(tag+"[fail]", "kind", kind, "err", err)
	}
	c.JSON(kind.HTTPStatus(), gin.H{"success": false, "error": apperr.PublicMessage(err)})
}

func respondBadRequest(c *gin.Context, tag string, err error) {
	logger.FromContext(c.Request.Context()).Info(tag+"[bind][err]", "err", err)
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindMessage(err)})
}

// caller returns the authenticated identity or writes a 401.
func caller(c *gin.Context) (authz.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, "[auth]", apperr.Unauthenticated("Not authorized, no token"))
		return authz.Identity{}, false
	}
	return id, true
}

func respondOK(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}
