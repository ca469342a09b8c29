package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

const defaultSQLitePath = "automation_advisor.db"

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		zap.L().Debug("opening sqlite store", zap.String("dsn", dsn))
		return store.NewSQLite(dsn)
	case "postgres":
		zap.L().Debug("opening postgres store")
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
