package handler

import (
	"strconv"
	"time"

	"github.com/tridxis/price-agent/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RequestMetrics returns a Gin middleware recording request counts and
// latency per route. The route template is used instead of the raw path to
// keep label cardinality bounded.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
