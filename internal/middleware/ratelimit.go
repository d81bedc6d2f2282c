package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"taskflow/internal/logger"
	"taskflow/internal/metrics"
)

// RateLimit limits requests per client IP. rate uses the limiter's formatted
// form, e.g. "20-M" for twenty requests a minute.
func RateLimit(rate string, m *metrics.Metrics) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	lim := limiter.New(memory.NewStore(), r)

	return func(c *gin.Context) {
		ctx, err := lim.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			// fail open: the store is in-process, this should not happen
			logger.FromContext(c.Request.Context()).Error("[ratelimit] store error", "err", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			m.AuthFailure("rate_limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}, nil
}
