// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Language represents a supported target language.
type Language struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`            // ISO 639-1/639-2: en, es, ht
	Name        string    `json:"name"`            // English, Spanish, Haitian Creole
	Phone       string    `json:"phone,omitempty"` // hotline for this language
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LanguagePayload is the external-facing shape of a language.
type LanguagePayload struct {
	Code  string `json:"lang"`
	Name  string `json:"language"`
	Phone string `json:"phone,omitempty"`
}

// ToPayload returns the language in its API response shape.
func (l *Language) ToPayload() LanguagePayload {
	return LanguagePayload{
		Code:  l.Code,
		Name:  l.Name,
		Phone: l.Phone,
	}
}

// CommonLanguages provides a list of commonly needed languages for seeding.
var CommonLanguages = []struct {
	Code string
	Name string
}{
	{"en", "English"},
	{"es", "Spanish"},
	{"zh", "Chinese"},
	{"vi", "Vietnamese"},
	{"ko", "Korean"},
	{"tl", "Tagalog"},
	{"ru", "Russian"},
	{"ar", "Arabic"},
	{"ht", "Haitian Creole"},
	{"fr", "French"},
	{"pl", "Polish"},
	{"pt", "Portuguese"},
}
