package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/formline/guidecms/internal/model"
)

// CreateOriginalParams holds the fields required to create an original text
// segment.
type CreateOriginalParams struct {
	DocumentID  int64
	Number      int64
	Text        string
	Description string
}

// CreateOriginal attaches a numbered source-text segment to a document.
// Number uniqueness within the document is the caller's responsibility; no
// reservation is taken here.
func (q *Queries) CreateOriginal(ctx context.Context, params CreateOriginalParams) (model.Original, error) {
	if params.DocumentID <= 0 {
		return model.Original{}, &ValidationError{Field: "document"}
	}
	if params.Number <= 0 {
		return model.Original{}, &ValidationError{Field: "number"}
	}
	if params.Text == "" {
		return model.Original{}, &ValidationError{Field: "text"}
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO originals (document_id, number, text, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		params.DocumentID, params.Number, params.Text, params.Description, now,
	)
	if err != nil {
		return model.Original{}, fmt.Errorf("creating original: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Original{}, fmt.Errorf("creating original: %w", err)
	}

	return model.Original{
		ID:          id,
		DocumentID:  params.DocumentID,
		Number:      params.Number,
		Text:        params.Text,
		Description: params.Description,
		CreatedAt:   now,
	}, nil
}

// GetOriginalByID fetches an original by primary key.
func (q *Queries) GetOriginalByID(ctx context.Context, id int64) (model.Original, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, document_id, number, text, description, created_at FROM originals WHERE id = ?`, id)
	return scanOriginal(row)
}

// ListOriginals returns a document's text segments ordered by number.
func (q *Queries) ListOriginals(ctx context.Context, docID int64) ([]model.Original, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, document_id, number, text, description, created_at FROM originals
		 WHERE document_id = ? ORDER BY number`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing originals: %w", err)
	}
	defer rows.Close()

	var originals []model.Original
	for rows.Next() {
		original, err := scanOriginal(rows)
		if err != nil {
			return nil, err
		}
		originals = append(originals, original)
	}
	return originals, rows.Err()
}

func scanOriginal(row rowScanner) (model.Original, error) {
	var original model.Original
	err := row.Scan(&original.ID, &original.DocumentID, &original.Number,
		&original.Text, &original.Description, &original.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Original{}, fmt.Errorf("original: %w", ErrNotFound)
	}
	if err != nil {
		return model.Original{}, fmt.Errorf("scanning original: %w", err)
	}
	return original, nil
}
