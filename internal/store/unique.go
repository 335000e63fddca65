package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/formline/guidecms/internal/model"
)

// UniqueExists reports whether a (scope, value) pair is reserved. This is a
// plain point lookup with no transactional guarantee; use
// CheckAndCreateUnique to claim a value.
func (q *Queries) UniqueExists(ctx context.Context, scope, value string) (bool, error) {
	var one int
	err := q.db.QueryRowContext(ctx,
		`SELECT 1 FROM unique_keys WHERE scope = ? AND value = ?`,
		scope, value,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking unique key: %w", err)
	}
	return true, nil
}

// CheckAndCreateUnique verifies that (scope, value) is unclaimed and reserves
// it, as a single transaction. Returns *DuplicateKeyError if the pair is
// already taken.
func (q *Queries) CheckAndCreateUnique(ctx context.Context, scope, value string) (model.UniqueRecord, error) {
	tx, err := q.begin(ctx)
	if err != nil {
		return model.UniqueRecord{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM unique_keys WHERE scope = ? AND value = ?`,
		scope, value,
	).Scan(&one)
	if err == nil {
		return model.UniqueRecord{}, &DuplicateKeyError{Scope: scope, Value: value}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.UniqueRecord{}, fmt.Errorf("checking unique key: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO unique_keys (scope, value, created_at) VALUES (?, ?, ?)`,
		scope, value, now,
	); err != nil {
		return model.UniqueRecord{}, fmt.Errorf("creating unique key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.UniqueRecord{}, fmt.Errorf("committing unique key: %w", err)
	}

	return model.UniqueRecord{Scope: scope, Value: value, CreatedAt: now}, nil
}

// RemoveUnique releases a (scope, value) reservation, freeing the value for
// reuse. Returns ErrNotFound if no reservation exists.
func (q *Queries) RemoveUnique(ctx context.Context, scope, value string) error {
	tx, err := q.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM unique_keys WHERE scope = ? AND value = ?`,
		scope, value,
	)
	if err != nil {
		return fmt.Errorf("removing unique key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing unique key: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("unique key %s:%s: %w", scope, value, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing unique key removal: %w", err)
	}
	return nil
}
