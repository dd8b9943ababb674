package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// errPanic is what clients see after a recovered panic; the panic value
// itself only goes to the log.
var errPanic = errors.New("unexpected failure while handling the request")

// RecoveryMiddleware turns a panic in any later handler into a logged stack
// trace and a 500 dto.ErrorResponse. A response that already started
// streaming is left alone and the connection just ends.
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RecoveryMiddleware())
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			requestEvent(c, zerolog.ErrorLevel).
				Str("path", c.Request.URL.Path).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			AbortWithError(c, http.StatusInternalServerError, "Internal server error", errPanic)
		}()

		c.Next()
	}
}
