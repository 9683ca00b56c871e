package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "github.com/lib/pq"

	"todo-engine/internal/config"
	"todo-engine/pkg/logger"
)

// ErrUnavailable is returned when DATABASE_URL is unset or the pool failed to open.
var ErrUnavailable = errors.New("database unavailable")

var (
	pool *sql.DB
	once sync.Once
)

// DB returns the global database connection pool (initialized on first use).
func DB(ctx context.Context) *sql.DB {
	once.Do(func() {
		cfg := config.Get()
		if cfg.DatabaseURL == "" {
			logger.Info(ctx, "Event journal disabled (DATABASE_URL not set)")
			return
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error(ctx, "Failed to open database", "error", err)
			return
		}
		db.SetMaxOpenConns(cfg.DBPoolSize)
		db.SetMaxIdleConns(max(1, cfg.DBPoolSize/2))
		pool = db
		logger.Info(ctx, "Database pool initialized", "max_open", cfg.DBPoolSize)
	})
	return pool
}

const schema = `
CREATE TABLE IF NOT EXISTS todo_events (
	id          BIGSERIAL PRIMARY KEY,
	action      TEXT        NOT NULL,
	todo_id     TEXT        NOT NULL,
	title       TEXT        NOT NULL DEFAULT '',
	completed   BOOLEAN     NOT NULL DEFAULT FALSE,
	actor       TEXT        NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS todo_events_occurred_at_idx ON todo_events (occurred_at DESC);
CREATE INDEX IF NOT EXISTS todo_events_todo_id_idx ON todo_events (todo_id);
`

// MigrateOrCreateSchema creates the event journal tables if they do not exist.
func MigrateOrCreateSchema(ctx context.Context) error {
	db := DB(ctx)
	if db == nil {
		return ErrUnavailable
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		return err
	}
	return nil
}
