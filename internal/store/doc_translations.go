package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/formline/guidecms/internal/model"
	"github.com/formline/guidecms/internal/util"
)

const documentTranslationColumns = `id, document_id, lang_code, status, created_at, updated_at`

// CreateDocumentTranslation creates the publication state record for a
// (document, language) pair, starting in draft. The code is normalized so the
// pair, its cache tag and the language listings all agree on one spelling. At
// most one record exists per pair; the existence check and insert share a
// transaction, with the schema's compound key as backstop.
func (q *Queries) CreateDocumentTranslation(ctx context.Context, docID int64, langCode string) (model.DocumentTranslation, error) {
	if docID <= 0 {
		return model.DocumentTranslation{}, &ValidationError{Field: "document"}
	}
	langCode, err := util.NormalizeLangCode(langCode)
	if err != nil {
		return model.DocumentTranslation{}, &ValidationError{Field: "lang_code"}
	}

	tx, err := q.begin(ctx)
	if err != nil {
		return model.DocumentTranslation{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM document_translations WHERE document_id = ? AND lang_code = ?`,
		docID, langCode,
	).Scan(&one)
	if err == nil {
		return model.DocumentTranslation{}, &DuplicateKeyError{Scope: "DocumentTranslation", Value: langCode}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.DocumentTranslation{}, fmt.Errorf("checking document translation: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO document_translations (document_id, lang_code, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		docID, langCode, model.TranslationStatusDraft, now, now,
	)
	if err != nil {
		return model.DocumentTranslation{}, fmt.Errorf("creating document translation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.DocumentTranslation{}, fmt.Errorf("creating document translation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.DocumentTranslation{}, fmt.Errorf("creating document translation: %w", err)
	}

	return model.DocumentTranslation{
		ID:         id,
		DocumentID: docID,
		LangCode:   langCode,
		Status:     model.TranslationStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetDocumentTranslation fetches the state record for a (document, language)
// pair.
func (q *Queries) GetDocumentTranslation(ctx context.Context, docID int64, langCode string) (model.DocumentTranslation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+documentTranslationColumns+` FROM document_translations
		 WHERE document_id = ? AND lang_code = ?`,
		docID, canonicalLang(langCode),
	)
	return scanDocumentTranslation(row)
}

// PublishDocumentTranslation makes a draft translation visible to readers.
// The document's cached language list is updated before the status flip, so
// the cache never lags a visible publish. Returns false with no side effect
// when the translation is already published.
func (q *Queries) PublishDocumentTranslation(ctx context.Context, id int64) (bool, error) {
	dt, err := q.getDocumentTranslationByID(ctx, id)
	if err != nil {
		return false, err
	}
	if dt.IsPublished() {
		return false, nil
	}

	if _, err := q.AddTranslationTag(ctx, dt.DocumentID, dt.LangCode); err != nil {
		return false, fmt.Errorf("publishing translation: %w", err)
	}

	return q.setTranslationStatus(ctx, id, model.TranslationStatusDraft, model.TranslationStatusPublished)
}

// UnpublishDocumentTranslation takes a published translation back to draft,
// removing its language from the document's cached list first. Returns false
// with no side effect when the translation is already a draft.
func (q *Queries) UnpublishDocumentTranslation(ctx context.Context, id int64) (bool, error) {
	dt, err := q.getDocumentTranslationByID(ctx, id)
	if err != nil {
		return false, err
	}
	if dt.IsDraft() {
		return false, nil
	}

	if _, err := q.RemoveTranslationTag(ctx, dt.DocumentID, dt.LangCode); err != nil {
		return false, fmt.Errorf("unpublishing translation: %w", err)
	}

	return q.setTranslationStatus(ctx, id, model.TranslationStatusPublished, model.TranslationStatusDraft)
}

// ListPublishedTranslationKeys returns (document, language) pairs for every
// published translation across all documents.
func (q *Queries) ListPublishedTranslationKeys(ctx context.Context) ([]model.DocumentTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+documentTranslationColumns+` FROM document_translations
		 WHERE status = ? ORDER BY document_id, lang_code`,
		model.TranslationStatusPublished,
	)
	if err != nil {
		return nil, fmt.Errorf("listing published translation keys: %w", err)
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

// ListDocumentTranslations returns all state records for a document.
func (q *Queries) ListDocumentTranslations(ctx context.Context, docID int64) ([]model.DocumentTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+documentTranslationColumns+` FROM document_translations
		 WHERE document_id = ? ORDER BY lang_code`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing document translations: %w", err)
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

// setTranslationStatus flips status conditionally. A zero row count means a
// concurrent caller completed the same transition first; the tag cache is
// already in the target state either way, so that is reported as a no-op.
func (q *Queries) setTranslationStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE document_translations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating translation status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating translation status: %w", err)
	}
	return affected == 1, nil
}

func (q *Queries) getDocumentTranslationByID(ctx context.Context, id int64) (model.DocumentTranslation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+documentTranslationColumns+` FROM document_translations WHERE id = ?`, id)
	return scanDocumentTranslation(row)
}

func scanDocumentTranslation(row rowScanner) (model.DocumentTranslation, error) {
	var dt model.DocumentTranslation
	err := row.Scan(&dt.ID, &dt.DocumentID, &dt.LangCode, &dt.Status,
		&dt.CreatedAt, &dt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DocumentTranslation{}, fmt.Errorf("document translation: %w", ErrNotFound)
	}
	if err != nil {
		return model.DocumentTranslation{}, fmt.Errorf("scanning document translation: %w", err)
	}
	return dt, nil
}
