// Package db stores records and chunk vectors in Postgres (Supabase) through bun.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"boe-rag/internal/config"
)

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the database with the configured driver: pgdriver passes the
// service key as password, pq expects it inside the URL.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL
	if !strings.Contains(dsn, "sslmode=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "sslmode=disable"
	}

	switch cfg.Driver {
	case "pq":
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		return sql.OpenDB(connector), nil
	default:
		opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
		if cfg.Key != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Key))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	}
}

// Store is the Postgres sink for records and chunks.
type Store struct {
	db     *bun.DB
	batch  int
	logger zerolog.Logger
}

func New(db *bun.DB, batch int, logger zerolog.Logger) *Store {
	if batch <= 0 {
		batch = 100
	}
	return &Store{
		db:     db,
		batch:  batch,
		logger: logger.With().Str("component", "db").Logger(),
	}
}

// Open connects with cfg and pings the server.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	db := NewDB(sqldb, cfg.Debug)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(db, cfg.Batch, logger), nil
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) Close() error { return s.db.Close() }

// InitDB creates the pgvector extension and both tables.
func (s *Store) InitDB(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	for _, model := range []any{(*Record)(nil), (*ChunkRow)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// DropTables removes both tables.
func (s *Store) DropTables(ctx context.Context) error {
	for _, model := range []any{(*ChunkRow)(nil), (*Record)(nil)} {
		if _, err := s.db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
