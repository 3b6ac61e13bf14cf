package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guttosm/tradedash/config"
	"github.com/guttosm/tradedash/internal/app"
	"github.com/guttosm/tradedash/internal/dashboard"
	"github.com/guttosm/tradedash/internal/ledgerclient"
	"github.com/guttosm/tradedash/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// run serves router on port until a shutdown signal arrives. Tests replace it.
var run = func(router http.Handler, port string, cleanup func()) {
	server := startServer(router, port)
	gracefulShutdown(context.Background(), server, cleanup)
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "tradedash",
		Short:        "Trade ledger dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := config.LoadConfig(); err != nil {
				return err
			}
			if logLevel != "" {
				logger.InitWith(logLevel, strings.EqualFold(os.Getenv("LOG_PRETTY"), "true"))
			} else {
				logger.Init()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (default: LOG_LEVEL or info)")

	root.AddCommand(
		newDashboardCmd(),
		newLedgerCmd(),
		newSnapshotCmd(),
		newVersionCmd(),
	)
	return root
}

func newDashboardCmd() *cobra.Command {
	var port, apiURL string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the trade dashboard UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				config.AppConfig.Server.Port = port
			}
			if err := overrideAPIURL(apiURL); err != nil {
				return err
			}

			router, cleanup, err := app.InitializeDashboard()
			if err != nil {
				return fmt.Errorf("dashboard init: %w", err)
			}
			logger.L().Info().Str("ledger", config.AppConfig.Ledger.BaseURL).Msg("starting dashboard")
			run(router, config.AppConfig.Server.Port, cleanup)
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: SERVER_PORT)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "ledger API base URL (default: LEDGER_API_URL)")
	return cmd
}

func newLedgerCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Run the ledger API backed by PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				config.AppConfig.Ledger.Port = port
			}

			router, cleanup, err := app.InitializeLedger()
			if err != nil {
				return fmt.Errorf("ledger init: %w", err)
			}
			logger.L().Info().Msg("starting ledger API")
			run(router, config.AppConfig.Ledger.Port, cleanup)
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: LEDGER_PORT)")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	var (
		apiURL string
		width  int
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the dashboard once to the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := overrideAPIURL(apiURL); err != nil {
				return err
			}
			cfg := config.AppConfig

			client := ledgerclient.New(cfg.Ledger.BaseURL, cfg.Ledger.Timeout)
			state := dashboard.LoadState(cmd.Context(), client, logger.With(logger.ComponentDashboard))
			view := dashboard.Render(state, dashboard.CatalogFor(cfg.UI.Lang))

			out := cmd.OutOrStdout()
			if raw {
				_, err := fmt.Fprint(out, dashboard.Markdown(view))
				return err
			}
			md, err := dashboard.NewMarkdownRenderer(dashboard.ThemeFor(cfg.UI.Theme), width)
			if err != nil {
				return err
			}
			rendered, err := md.Render(view)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "ledger API base URL (default: LEDGER_API_URL)")
	cmd.Flags().IntVar(&width, "width", 120, "word wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain markdown")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func overrideAPIURL(apiURL string) error {
	if apiURL == "" {
		return nil
	}
	config.AppConfig.Ledger.BaseURL = strings.TrimRight(apiURL, "/")
	return config.AppConfig.Validate()
}
