package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/formline/guidecms/internal/model"
)

// CreateEventParams holds the fields for an event log entry.
type CreateEventParams struct {
	Level    string
	Category string
	Message  string
	Editor   sql.NullString
	Metadata string
}

// CreateEvent writes an event log entry.
func (q *Queries) CreateEvent(ctx context.Context, params CreateEventParams) (model.Event, error) {
	if params.Metadata == "" {
		params.Metadata = "{}"
	}
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, editor, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		params.Level, params.Category, params.Message, params.Editor, params.Metadata, now,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}

	return model.Event{
		ID:        id,
		Level:     params.Level,
		Category:  params.Category,
		Message:   params.Message,
		Editor:    params.Editor,
		Metadata:  params.Metadata,
		CreatedAt: now,
	}, nil
}

// ListRecentEvents returns up to limit events, newest first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, editor, metadata, created_at FROM events
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Level, &ev.Category, &ev.Message,
			&ev.Editor, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes events older than cutoff and returns the count.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	return affected, nil
}

// CountEvents returns the total number of event log entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}
