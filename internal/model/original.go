// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Original is one numbered unit of source-language text within a document.
// Its language is the parent document's language.
type Original struct {
	ID          int64     `json:"id"`
	DocumentID  int64     `json:"document_id"`
	Number      int64     `json:"number"` // unique within the document, caller enforced
	Text        string    `json:"text"`
	Description string    `json:"description,omitempty"` // context for translators
	CreatedAt   time.Time `json:"created_at"`
}
