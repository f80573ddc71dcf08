package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-storefront/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小：声明长度超限直接拒绝；未声明（chunked）的在读取时截断，
// 由绑定层报 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			reject(c, "too_large", resp.CodeTooLarge, "request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
