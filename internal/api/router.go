package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/guttosm/tradenorm/docs" // registers the swagger spec
	"github.com/guttosm/tradenorm/internal/middleware"
)

// requestTimeout bounds every request, uploads included.
const requestTimeout = 30 * time.Second

// Limits configures the protective middlewares; zero values disable them.
type Limits struct {
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a Gin engine with routes configured.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds request timeout handling.
//   - Caps upload bodies on the upload routes.
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, limits Limits) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
	)
	if limits.RateLimitRPS > 0 && limits.RateLimitBurst > 0 {
		router.Use(middleware.RateLimiter(limits.RateLimitRPS, limits.RateLimitBurst))
	}

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		uploads := v1.Group("")
		if limits.MaxUploadBytes > 0 {
			uploads.Use(middleware.MaxBodyBytes(limits.MaxUploadBytes))
		}
		uploads.POST("/normalize/:broker", handler.Normalize)
		uploads.POST("/imports/:broker", handler.Import)

		v1.GET("/trades", handler.ListTrades)
	}

	return router
}
