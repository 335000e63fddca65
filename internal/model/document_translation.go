// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Document translation statuses
const (
	TranslationStatusDraft     = "draft"
	TranslationStatusPublished = "published"
)

// DocumentTranslation tracks the publication status of a (document, language)
// pair. Only published pairs are visible to readers. Distinct from the
// Translation text records themselves.
type DocumentTranslation struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	LangCode   string    `json:"lang"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsPublished returns true if the translation is published.
func (dt *DocumentTranslation) IsPublished() bool {
	return dt.Status == TranslationStatusPublished
}

// IsDraft returns true if the translation is a draft.
func (dt *DocumentTranslation) IsDraft() bool {
	return dt.Status == TranslationStatusDraft
}
