package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/tradenorm/internal/logger"
)

// RequestLogger emits one "http_request" line per request once the handler
// chain has finished. The level follows the response: 5xx logs at error,
// 4xx at warn, everything else at info. Errors attached with c.Error are
// included so a rejected upload explains itself in the log.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	{"level":"warn","request_id":"...","method":"POST","path":"/api/v1/normalize/schwab","status":400,"latency_ms":3,"errors":"..."}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		ev := requestEvent(c, levelFor(status)).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Int("bytes_out", c.Writer.Size()).
			Str("client_ip", c.ClientIP())
		if broker := c.Param("broker"); broker != "" {
			ev = ev.Str("broker", broker)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Msg("http_request")
	}
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// requestEvent starts a log event carrying the request id and method.
func requestEvent(c *gin.Context, level zerolog.Level) *zerolog.Event {
	return logger.L().WithLevel(level).
		Str("request_id", requestID(c)).
		Str("method", c.Request.Method)
}

// requestID returns the id stored by RequestID, or "" when that middleware
// is not installed.
func requestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
