package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradedash/config"
	"github.com/guttosm/tradedash/internal/api"
	"github.com/guttosm/tradedash/internal/ingestion"
	"github.com/guttosm/tradedash/internal/service"
	"github.com/guttosm/tradedash/internal/storage"
)

// migrator applies the schema; overridden in tests that run on sqlmock.
var migrator = storage.Migrate

// InitializeLedger sets up the ledger service and returns its Gin router,
// a cleanup function for graceful shutdown, and any initialization error.
//
// Responsibilities:
//   - Connects to PostgreSQL and applies the embedded migrations.
//   - Builds repository, importer and service layers.
//   - Configures the trades API, Swagger UI and health checks.
func InitializeLedger() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	db, err := postgresOpener(cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	if err := migrator(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate: %w", err)
	}

	repo := storage.NewTradesRepository(db)
	svc := service.NewTradesService(repo, ingestion.NewImporter(repo))

	router := api.NewLedgerRouter(api.NewLedgerHandler(svc, cfg.Server.UploadMaxBytes), cfg.Server)
	api.NewHealthHandler(db.PingContext).Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
