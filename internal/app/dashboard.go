package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradedash/config"
	"github.com/guttosm/tradedash/internal/api"
	"github.com/guttosm/tradedash/internal/dashboard"
	"github.com/guttosm/tradedash/internal/ledgerclient"
	"github.com/guttosm/tradedash/internal/logger"
)

// InitializeDashboard mounts the dashboard against the configured ledger API
// and starts its event loop.
//
// The returned cleanup stops the loop and waits for it; requests served after
// that answer 503.
func InitializeDashboard() (*gin.Engine, func(), error) {
	cfg := config.AppConfig
	log := logger.With(logger.ComponentDashboard)

	html, err := dashboard.NewHTMLRenderer(dashboard.ThemeFor(cfg.UI.Theme))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	client := ledgerclient.New(cfg.Ledger.BaseURL, cfg.Ledger.Timeout)
	dash := dashboard.New(client,
		dashboard.WithCatalog(dashboard.CatalogFor(cfg.UI.Lang)),
		dashboard.WithLogger(log),
	)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := dash.Run(ctx); err != nil {
			log.Error().Err(err).Msg("dashboard loop exited")
		}
	}()

	handler := api.NewDashboardHandler(dash, html, cfg.Server.UploadMaxBytes)
	router := api.NewDashboardRouter(handler, api.NewLiveFeed(dash, html, log), cfg.Server)
	api.NewHealthHandler(func(ctx context.Context) error {
		_, err := client.GetStats(ctx)
		return err
	}).Register(router)

	cleanup := func() {
		cancel()
		<-stopped
	}

	return router, cleanup, nil
}
