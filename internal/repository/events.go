package repository

import (
	"context"
	"database/sql"

	"todo-engine/internal/database"
	"todo-engine/internal/models"
	"todo-engine/pkg/logger"
)

// DefaultListLimit caps ListEvents when no limit is given.
const DefaultListLimit = 50

// EventRecord is a journalled todo event.
type EventRecord struct {
	ID int64 `json:"id"`
	models.TodoEvent
}

// Journal persists todo events in Postgres.
type Journal struct {
	DB *sql.DB
}

// NewJournal returns a journal on db. A nil db makes every call fail with database.ErrUnavailable.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{DB: db}
}

// Append inserts ev.
func (j *Journal) Append(ctx context.Context, ev models.TodoEvent) error {
	if j == nil || j.DB == nil {
		return database.ErrUnavailable
	}
	_, err := j.DB.ExecContext(ctx,
		`INSERT INTO todo_events (action, todo_id, title, completed, actor, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.Action, ev.TodoID, ev.Title, ev.Completed, ev.Actor, ev.OccurredAt)
	if err != nil {
		logger.Error(ctx, "Journal append failed", "error", err, "todo_id", ev.TodoID)
		return err
	}
	return nil
}

// ListEvents returns the most recent events, newest first.
func (j *Journal) ListEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	if j == nil || j.DB == nil {
		return nil, database.ErrUnavailable
	}
	if limit <= 0 || limit > 500 {
		limit = DefaultListLimit
	}
	rows, err := j.DB.QueryContext(ctx,
		`SELECT id, action, todo_id, title, completed, actor, occurred_at
		 FROM todo_events ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		logger.Error(ctx, "Journal list failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	events := make([]EventRecord, 0, limit)
	for rows.Next() {
		var e EventRecord
		if err := rows.Scan(&e.ID, &e.Action, &e.TodoID, &e.Title, &e.Completed, &e.Actor, &e.OccurredAt); err != nil {
			logger.Error(ctx, "Journal scan failed", "error", err)
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
