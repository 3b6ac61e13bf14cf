package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guttosm/tradedash/config"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

const pingTimeout = 5 * time.Second

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres opens the ledger database described by cfg and verifies the
// connection with a ping.
//
// Example usage:
//
//	db, err := app.InitPostgres(config.AppConfig.Postgres)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func InitPostgres(cfg config.PostgresConfig) (*sql.DB, error) {
	dsn := cfg.URL
	if dsn == "" {
		dsn = cfg.DSN()
	}

	db, err := sqlOpener("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// postgresOpener is an indirection used by InitializeLedger; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres
