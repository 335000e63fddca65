// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the core data types shared by the store and the
// higher layers.
package model

import (
	"slices"
	"time"
)

// Document represents one guide document. Its number is the public
// identifier used in URLs and lookups; uniqueness is enforced through the
// registry at creation, not by the schema.
type Document struct {
	ID          int64  `json:"id"`
	Number      int64  `json:"number"`
	Lang        string `json:"lang"` // source language code
	Code        string `json:"code,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// TranslatedLangs caches the language codes with a published
	// translation, so list pages never join against the state records.
	TranslatedLangs []string `json:"translated_langs"`

	// Version guards the optimistic read-modify-write of TranslatedLangs.
	Version int64 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTranslation reports whether langCode is in the cached published set.
func (d *Document) HasTranslation(langCode string) bool {
	return slices.Contains(d.TranslatedLangs, langCode)
}
