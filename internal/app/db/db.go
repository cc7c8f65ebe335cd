/*
Package db opens the SQL databases backing the persistent store and applies the embedded
schema migrations for each supported dialect.
*/
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"guildchat/internal/pkg/logx"
)

//go:embed migrations
var embedMigrations embed.FS

// Dialects accepted by OpenSQL, named after their database/sql drivers.
const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

const connectTimeout = 15 * time.Second

// NewPool initializes a new PostgreSQL connection pool and executes database migrations.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := runMigrations(ctx, sqlDB, "postgres", "migrations/postgres"); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// OpenSQL opens a database/sql handle for dialect, tunes it, and executes database migrations.
func OpenSQL(ctx context.Context, dialect, dsn string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var (
		sqlDB        *sql.DB
		err          error
		gooseDialect string
	)

	switch dialect {
	case DialectSQLite:
		sqlDB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		// sqlite reports busy errors under concurrent writers
		sqlDB.SetMaxOpenConns(1)

		if err := setPragmaValues(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
		gooseDialect = "sqlite3"

	case DialectMySQL:
		mysqlCfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mysql DSN: %w", err)
		}
		if mysqlCfg.Params == nil {
			mysqlCfg.Params = map[string]string{}
		}
		mysqlCfg.Params["charset"] = "utf8mb4"
		mysqlCfg.ParseTime = true
		mysqlCfg.Timeout = 10 * time.Second

		connector, err := mysql.NewConnector(mysqlCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create mysql connector: %w", err)
		}
		sqlDB = sql.OpenDB(connector)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		gooseDialect = "mysql"

	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	if err := runMigrations(ctx, sqlDB, gooseDialect, "migrations/"+dialect); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

func setPragmaValues(ctx context.Context, sqlDB *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

// runMigrations applies all pending migrations of dir from the embedded file system.
func runMigrations(ctx context.Context, sqlDB *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Database migrations applied successfully.", "dialect", dialect)
	return nil
}
