package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/config"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB is the relational store behind the server. The same queries run on
// sqlite3 and postgres; only the placeholder format differs.
type DB struct {
	*sqlx.DB
	driver string
	sb     squirrel.StatementBuilderType
	logger *zerolog.Logger
}

// NewDB opens the database described by cfg and applies pending migrations.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		// Создаем директорию для БД, если её нет
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return Open(ctx, config.DriverSQLite, cfg.Path+"?_foreign_keys=on&_busy_timeout=5000", logger, cfg.Postgres.MaxConnections)
	case config.DriverPostgres:
		return Open(ctx, config.DriverPostgres, cfg.Postgres.DSN(), logger, cfg.Postgres.MaxConnections)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// placeholderFor picks $n for postgres and ? for sqlite3.
func placeholderFor(driver string) squirrel.PlaceholderFormat {
	if driver == config.DriverPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Open connects with an explicit driver and DSN. maxConns is ignored for
// sqlite3, which always runs on a single connection.
func Open(ctx context.Context, driver, dsn string, logger *zerolog.Logger, maxConns int) (*DB, error) {
	sqlDriver := driver
	if driver == config.DriverPostgres {
		sqlDriver = "pgx"
	}

	conn, err := sqlx.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:     conn,
		driver: driver,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(placeholderFor(driver)),
		logger: logger,
	}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	// sqlite пишет только из одного соединения
	if driver == config.DriverSQLite {
		conn.SetMaxOpenConns(1)
	} else if maxConns > 0 {
		conn.SetMaxOpenConns(maxConns)
	}

	logger.Info().Str("driver", driver).Msg("database initialized")
	return db, nil
}

func (db *DB) Driver() string {
	return db.driver
}
