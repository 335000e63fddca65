// Package store provides data access for guides, languages and translations
// over SQLite. Uniqueness of document numbers and language codes is enforced
// through the unique_keys reservation table rather than schema indexes, so a
// duplicate surfaces as a typed rejection instead of a driver error.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database handle methods the queries need. Both
// *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to the database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance. Pass a *sql.DB for operations that open
// their own transactions (the uniqueness registry, translation creation,
// publish/unpublish).
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to an existing transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// txRetryLimit bounds optimistic read-modify-write retries on the
// translated-languages cache.
const txRetryLimit = 3

// begin opens a transaction. The connection is configured with
// _txlock=immediate, so the write lock is taken at BEGIN.
func (q *Queries) begin(ctx context.Context) (*sql.Tx, error) {
	db, ok := q.db.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("store: operation requires a *sql.DB, not a transaction")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}
