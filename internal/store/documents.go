package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/formline/guidecms/internal/model"
)

const documentColumns = `id, number, lang, code, title, description, translated_langs, version, created_at, updated_at`

// CreateDocumentParams holds the fields required to create a document.
type CreateDocumentParams struct {
	Number      int64
	Lang        string
	Code        string
	Title       string
	Description string
}

// CreateDocument reserves the document number through the uniqueness registry
// and inserts the record. A *DuplicateKeyError from the reservation
// propagates unchanged; the insert never runs for a number that failed to
// reserve.
func (q *Queries) CreateDocument(ctx context.Context, params CreateDocumentParams) (model.Document, error) {
	if params.Number <= 0 {
		return model.Document{}, &ValidationError{Field: "number"}
	}
	if params.Lang == "" {
		return model.Document{}, &ValidationError{Field: "lang"}
	}
	if params.Title == "" {
		return model.Document{}, &ValidationError{Field: "title"}
	}

	if _, err := q.CheckAndCreateUnique(ctx, model.ScopeDocument, strconv.FormatInt(params.Number, 10)); err != nil {
		return model.Document{}, err
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO documents (number, lang, code, title, description, translated_langs, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '[]', 0, ?, ?)`,
		params.Number, params.Lang, params.Code, params.Title, params.Description, now, now,
	)
	if err != nil {
		return model.Document{}, fmt.Errorf("creating document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Document{}, fmt.Errorf("creating document: %w", err)
	}

	return model.Document{
		ID:              id,
		Number:          params.Number,
		Lang:            params.Lang,
		Code:            params.Code,
		Title:           params.Title,
		Description:     params.Description,
		TranslatedLangs: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// GetDocumentByID fetches a document by primary key.
func (q *Queries) GetDocumentByID(ctx context.Context, id int64) (model.Document, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetDocumentByNumber fetches a document by its number. The number is a
// filtered attribute, not a key: with a duplicate somehow present the first
// created document wins, matching registry semantics.
func (q *Queries) GetDocumentByNumber(ctx context.Context, number int64) (model.Document, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE number = ? ORDER BY id LIMIT 1`, number)
	return scanDocument(row)
}

// ListDocuments returns all documents ordered by number.
func (q *Queries) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// AddTranslationTag appends a language code to the document's cached
// translation list if absent. The read-modify-write is guarded by the version
// counter and retried up to txRetryLimit times on conflict.
func (q *Queries) AddTranslationTag(ctx context.Context, docID int64, langCode string) (model.Document, error) {
	return q.updateTranslationTags(ctx, docID, func(tags []string) ([]string, bool) {
		if slices.Contains(tags, langCode) {
			return tags, false
		}
		return append(tags, langCode), true
	})
}

// RemoveTranslationTag removes a language code from the cached translation
// list. Removing an absent tag is a no-op, not an error; storage failures
// still surface.
func (q *Queries) RemoveTranslationTag(ctx context.Context, docID int64, langCode string) (model.Document, error) {
	return q.updateTranslationTags(ctx, docID, func(tags []string) ([]string, bool) {
		idx := slices.Index(tags, langCode)
		if idx < 0 {
			return tags, false
		}
		return slices.Delete(tags, idx, idx+1), true
	})
}

// updateTranslationTags runs the optimistic retry loop shared by tag
// mutations. mutate returns the new list and whether anything changed.
func (q *Queries) updateTranslationTags(ctx context.Context, docID int64, mutate func([]string) ([]string, bool)) (model.Document, error) {
	for attempt := 0; attempt < txRetryLimit; attempt++ {
		doc, err := q.GetDocumentByID(ctx, docID)
		if err != nil {
			return model.Document{}, err
		}

		tags, changed := mutate(slices.Clone(doc.TranslatedLangs))
		if !changed {
			return doc, nil
		}

		encoded, err := json.Marshal(tags)
		if err != nil {
			return model.Document{}, fmt.Errorf("encoding translation tags: %w", err)
		}

		now := time.Now().UTC()
		res, err := q.db.ExecContext(ctx,
			`UPDATE documents SET translated_langs = ?, version = version + 1, updated_at = ?
			 WHERE id = ? AND version = ?`,
			string(encoded), now, docID, doc.Version,
		)
		if err != nil {
			return model.Document{}, fmt.Errorf("updating translation tags: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return model.Document{}, fmt.Errorf("updating translation tags: %w", err)
		}
		if affected == 1 {
			doc.TranslatedLangs = tags
			doc.Version++
			doc.UpdatedAt = now
			return doc, nil
		}
		// Version moved under us; reload and try again.
	}
	return model.Document{}, fmt.Errorf("updating translation tags for document %d: %w", docID, ErrTxRetriesExhausted)
}

// GetPublishedTranslations returns the published translation state records
// for a document.
func (q *Queries) GetPublishedTranslations(ctx context.Context, docID int64) ([]model.DocumentTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+documentTranslationColumns+` FROM document_translations
		 WHERE document_id = ? AND status = ? ORDER BY lang_code`,
		docID, model.TranslationStatusPublished,
	)
	if err != nil {
		return nil, fmt.Errorf("listing published translations: %w", err)
	}
	defer rows.Close()

	var dts []model.DocumentTranslation
	for rows.Next() {
		dt, err := scanDocumentTranslation(rows)
		if err != nil {
			return nil, err
		}
		dts = append(dts, dt)
	}
	return dts, rows.Err()
}

// GetOriginalByNumber fetches the original text segment with the given number
// within a document.
func (q *Queries) GetOriginalByNumber(ctx context.Context, docID, number int64) (model.Original, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, document_id, number, text, description, created_at FROM originals
		 WHERE document_id = ? AND number = ? ORDER BY id LIMIT 1`,
		docID, number,
	)
	return scanOriginal(row)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var doc model.Document
	var encoded string
	err := row.Scan(&doc.ID, &doc.Number, &doc.Lang, &doc.Code, &doc.Title,
		&doc.Description, &encoded, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, fmt.Errorf("document: %w", ErrNotFound)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("scanning document: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &doc.TranslatedLangs); err != nil {
		return model.Document{}, fmt.Errorf("decoding translation tags: %w", err)
	}
	if doc.TranslatedLangs == nil {
		doc.TranslatedLangs = []string{}
	}
	return doc, nil
}

// documentPlaceholders builds "?, ?, ..." for IN clauses.
func documentPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
