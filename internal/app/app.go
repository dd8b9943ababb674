package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradenorm/config"
	"github.com/guttosm/tradenorm/internal/api"
	"github.com/guttosm/tradenorm/internal/service"
	"github.com/guttosm/tradenorm/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Initializes the repository layer (TradesRepository).
//   - Creates the trade service with its normalize cache.
//   - Configures the Gin router with all API routes and limits.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	repo := storage.NewTradesRepository(db)
	svc := service.NewTradeService(repo, cfg.Normalize.CacheTTL)
	handler := api.NewHandler(svc)

	router := api.NewRouter(handler, api.Limits{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	healthHandler := api.NewHealthHandler(db.PingContext)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
