package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-storefront/internal/core/metrics"
	resp "go-gin-storefront/internal/transport/http/response"
)

// Metrics records count, latency and in-flight per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		c.Next()

		// 未匹配路由统一归为一个 label，避免基数爆炸
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// reject aborts with the envelope for code and counts the rejection under reason.
func reject(c *gin.Context, reason string, code int, msg string) {
	metrics.HTTPRejected.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(resp.Status(code), resp.Error(code, msg))
}
