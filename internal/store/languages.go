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

const languageColumns = `id, code, name, phone, description, created_at, updated_at`

// CreateLanguageParams holds the fields required to register a language.
type CreateLanguageParams struct {
	Code        string
	Name        string
	Phone       string
	Description string
}

// CreateLanguage registers a language once, globally. The code is normalized
// and reserved through the uniqueness registry; a second registration fails
// with *DuplicateKeyError.
func (q *Queries) CreateLanguage(ctx context.Context, params CreateLanguageParams) (model.Language, error) {
	if params.Code == "" {
		return model.Language{}, &ValidationError{Field: "code"}
	}
	if params.Name == "" {
		return model.Language{}, &ValidationError{Field: "name"}
	}

	code, err := util.NormalizeLangCode(params.Code)
	if err != nil {
		return model.Language{}, &ValidationError{Field: "code"}
	}

	if _, err := q.CheckAndCreateUnique(ctx, model.ScopeLanguage, code); err != nil {
		return model.Language{}, err
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO languages (code, name, phone, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		code, params.Name, params.Phone, params.Description, now, now,
	)
	if err != nil {
		return model.Language{}, fmt.Errorf("creating language: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Language{}, fmt.Errorf("creating language: %w", err)
	}

	return model.Language{
		ID:          id,
		Code:        code,
		Name:        params.Name,
		Phone:       params.Phone,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// canonicalLang maps a caller-supplied code to its stored form. Codes that do
// not parse pass through unchanged, so lookups under them miss naturally.
func canonicalLang(code string) string {
	if normalized, err := util.NormalizeLangCode(code); err == nil {
		return normalized
	}
	return code
}

// GetLanguageByCode fetches a language by its code.
func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (model.Language, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = ? ORDER BY id LIMIT 1`, canonicalLang(code))
	return scanLanguage(row)
}

// ListLanguages returns all registered languages ordered by code.
func (q *Queries) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+languageColumns+` FROM languages ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	defer rows.Close()

	var langs []model.Language
	for rows.Next() {
		lang, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	return langs, rows.Err()
}

// IsTranslationAvailable reports whether the (document, language) pair has a
// published translation state record.
func (q *Queries) IsTranslationAvailable(ctx context.Context, langCode string, docID int64) (bool, error) {
	var status string
	err := q.db.QueryRowContext(ctx,
		`SELECT status FROM document_translations WHERE document_id = ? AND lang_code = ?`,
		docID, canonicalLang(langCode),
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking translation availability: %w", err)
	}
	return status == model.TranslationStatusPublished, nil
}

// GetDocumentsForLanguage returns all documents that have a published
// translation in the given language. The lookup is two-step: the
// (status, lang_code) index yields document IDs, then the documents are
// resolved, so the listing never transfers translation payloads.
func (q *Queries) GetDocumentsForLanguage(ctx context.Context, langCode string) ([]model.Document, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT document_id FROM document_translations WHERE status = ? AND lang_code = ?`,
		model.TranslationStatusPublished, canonicalLang(langCode),
	)
	if err != nil {
		return nil, fmt.Errorf("listing published document ids: %w", err)
	}
	defer rows.Close()

	var ids []any
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	docRows, err := q.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE id IN (`+documentPlaceholders(len(ids))+`) ORDER BY number`,
		ids...,
	)
	if err != nil {
		return nil, fmt.Errorf("resolving documents: %w", err)
	}
	defer docRows.Close()

	var docs []model.Document
	for docRows.Next() {
		doc, err := scanDocument(docRows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, docRows.Err()
}

func scanLanguage(row rowScanner) (model.Language, error) {
	var lang model.Language
	err := row.Scan(&lang.ID, &lang.Code, &lang.Name, &lang.Phone,
		&lang.Description, &lang.CreatedAt, &lang.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Language{}, fmt.Errorf("language: %w", ErrNotFound)
	}
	if err != nil {
		return model.Language{}, fmt.Errorf("scanning language: %w", err)
	}
	return lang, nil
}
