package store

import (
	"context"
	"fmt"
	"os"

	"guildchat/internal/app/db"
	"guildchat/internal/configs"
)

// Open builds the Backend selected by cfg.StoreDriver and wraps it in a Gateway.
func Open(ctx context.Context, cfg *configs.AppConfig) (*Gateway, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.StoreDriver {
	case configs.StoreJSON:
		backend, err = NewFileBackend(cfg.DataDir)

	case configs.StoreSQLite, configs.StoreMySQL:
		if cfg.StoreDriver == configs.StoreSQLite {
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}

		sqlDB, openErr := db.OpenSQL(ctx, cfg.StoreDriver, cfg.DatabaseDSN)
		if openErr != nil {
			return nil, openErr
		}
		backend, err = NewSQLBackend(sqlDB, cfg.StoreDriver)
		if err != nil {
			sqlDB.Close()
		}

	case configs.StorePostgres:
		pool, openErr := db.NewPool(ctx, cfg.DatabaseDSN)
		if openErr != nil {
			return nil, openErr
		}
		backend = NewPostgresBackend(pool)

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if err != nil {
		return nil, err
	}

	return NewGateway(backend), nil
}
