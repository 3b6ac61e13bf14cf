package api

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/tradedash/config"
	"github.com/guttosm/tradedash/internal/middleware"
)

// newEngine creates a Gin engine with the middleware chain both services
// share: RequestID, RequestLogger, Recovery, ErrorHandler and RateLimiter.
func newEngine(cfg config.ServerConfig) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(cfg.RateLimit, time.Minute),
	)

	return router
}

// NewDashboardRouter mounts the dashboard UI.
//
// Routes:
//   - GET  /        full HTML page
//   - GET  /view    current frame as JSON
//   - POST /upload  select and submit a file
//   - POST /refresh reload trades and stats
//   - GET  /ws      live frames, exempt from the request timeout
//
// Health endpoints are registered by the app package.
func NewDashboardRouter(h *DashboardHandler, feed *LiveFeed, cfg config.ServerConfig) *gin.Engine {
	router := newEngine(cfg)

	router.GET("/ws", feed.Serve)

	// ─── Timeout ──────────────────────────────────
	ui := router.Group("/", middleware.Timeout(cfg.RequestTimeout))
	{
		ui.GET("/", h.Page)
		ui.GET("/view", h.View)
		ui.POST("/upload", h.Upload)
		ui.POST("/refresh", h.Refresh)
	}

	return router
}

// NewLedgerRouter mounts the ledger JSON API and its Swagger UI.
func NewLedgerRouter(h *LedgerHandler, cfg config.ServerConfig) *gin.Engine {
	router := newEngine(cfg)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── Trades API ───────────────────────────────
	trades := router.Group("/api/trades")
	{
		trades.GET("", h.ListTrades)
		trades.GET("/stats", h.GetStats)
		trades.POST("/upload", h.UploadTrades)
	}

	return router
}
