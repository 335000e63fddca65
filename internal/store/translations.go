package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formline/guidecms/internal/model"
	"github.com/formline/guidecms/internal/util"
)

const translationColumns = `id, original_id, lang_code, text, machine_translated, audio_ref, created_at`

// CreateTranslationParams holds the fields required to create a translation.
type CreateTranslationParams struct {
	OriginalID        int64
	LangCode          string
	Text              string
	MachineTranslated bool
	AudioRef          uuid.NullUUID
}

// CreateTranslation creates the translation of an original into one language.
// The code is normalized to the stored spelling. The existence check and the
// insert run in the same transaction, so concurrent creators targeting the
// same (original, language) pair are linearized: exactly one wins, the rest
// get *DuplicateTranslationError.
func (q *Queries) CreateTranslation(ctx context.Context, params CreateTranslationParams) (model.Translation, error) {
	if params.OriginalID <= 0 {
		return model.Translation{}, &ValidationError{Field: "original"}
	}
	langCode, err := util.NormalizeLangCode(params.LangCode)
	if err != nil {
		return model.Translation{}, &ValidationError{Field: "lang_code"}
	}
	params.LangCode = langCode
	if params.Text == "" {
		return model.Translation{}, &ValidationError{Field: "text"}
	}

	tx, err := q.begin(ctx)
	if err != nil {
		return model.Translation{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM translations WHERE original_id = ? AND lang_code = ?`,
		params.OriginalID, params.LangCode,
	).Scan(&one)
	if err == nil {
		return model.Translation{}, &DuplicateTranslationError{
			OriginalID: params.OriginalID,
			LangCode:   params.LangCode,
		}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Translation{}, fmt.Errorf("checking existing translation: %w", err)
	}

	var audioRef sql.NullString
	if params.AudioRef.Valid {
		audioRef = sql.NullString{String: params.AudioRef.UUID.String(), Valid: true}
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO translations (original_id, lang_code, text, machine_translated, audio_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		params.OriginalID, params.LangCode, params.Text, params.MachineTranslated, audioRef, now,
	)
	if err != nil {
		return model.Translation{}, fmt.Errorf("creating translation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Translation{}, fmt.Errorf("creating translation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Translation{}, fmt.Errorf("committing translation: %w", err)
	}

	return model.Translation{
		ID:                id,
		OriginalID:        params.OriginalID,
		LangCode:          params.LangCode,
		Text:              params.Text,
		MachineTranslated: params.MachineTranslated,
		AudioRef:          params.AudioRef,
		CreatedAt:         now,
	}, nil
}

// GetTranslation fetches the translation of an original in one language.
func (q *Queries) GetTranslation(ctx context.Context, originalID int64, langCode string) (model.Translation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+translationColumns+` FROM translations
		 WHERE original_id = ? AND lang_code = ?`,
		originalID, canonicalLang(langCode),
	)
	return scanTranslation(row)
}

// ListTranslations returns all translations of an original.
func (q *Queries) ListTranslations(ctx context.Context, originalID int64) ([]model.Translation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+translationColumns+` FROM translations
		 WHERE original_id = ? ORDER BY lang_code`,
		originalID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	defer rows.Close()

	var translations []model.Translation
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, tr)
	}
	return translations, rows.Err()
}

func scanTranslation(row rowScanner) (model.Translation, error) {
	var tr model.Translation
	var audioRef sql.NullString
	err := row.Scan(&tr.ID, &tr.OriginalID, &tr.LangCode, &tr.Text,
		&tr.MachineTranslated, &audioRef, &tr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Translation{}, fmt.Errorf("translation: %w", ErrNotFound)
	}
	if err != nil {
		return model.Translation{}, fmt.Errorf("scanning translation: %w", err)
	}
	if audioRef.Valid {
		ref, err := uuid.Parse(audioRef.String)
		if err != nil {
			return model.Translation{}, fmt.Errorf("decoding audio reference: %w", err)
		}
		tr.AudioRef = uuid.NullUUID{UUID: ref, Valid: true}
	}
	return tr, nil
}
