package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "go-gin-storefront/internal/transport/http/response"
)

// Timeout bounds the request context. Store and cache calls below observe the
// deadline; if nothing was written by then the client gets 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			reject(c, "timeout", resp.CodeTimeout, "request timed out")
		}
	}
}
