package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps the request body. Requests that announce a larger
// Content-Length are rejected up front with 413; others are wrapped in
// http.MaxBytesReader so reading past the cap fails.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			AbortWithError(c, http.StatusRequestEntityTooLarge, "request body too large",
				fmt.Errorf("content length %d exceeds %d bytes", c.Request.ContentLength, limit))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
