package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskflow/internal/logger"
	"taskflow/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the context and records
// one log line and one metrics sample per request.
func RequestLogger(base logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, reqID)

		log := base.With("req", reqID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		took := time.Since(start)
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), took.Seconds())

		kv := []any{"method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "took", took}
		switch {
		case status >= 500:
			log.Error("[http]", kv...)
		case status >= 400:
			log.Warn("[http]", kv...)
		default:
			log.Info("[http]", kv...)
		}
	}
}
