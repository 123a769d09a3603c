package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sberindex/ndi-cli/internal/store"
)

// initSource opens the configured snapshot backend for reading.
func initSource(ctx context.Context) (store.Source, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPostgres opens the Postgres backend for commands that also write
// (ingestion and the accessibility builder).
func initPostgres(ctx context.Context) (*store.PostgresSource, error) {
	if cfg.Store.Driver != "postgres" {
		return nil, eris.Errorf("this command requires the postgres driver, store.driver is %q", cfg.Store.Driver)
	}
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
}
