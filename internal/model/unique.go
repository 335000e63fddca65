// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Registry scopes. Each scope is an independent namespace of reserved
// values.
const (
	ScopeDocument = "Document"
	ScopeLanguage = "Language"
)

// UniqueRecord is one reservation in the uniqueness registry: the claim that
// value is taken within scope.
type UniqueRecord struct {
	Scope     string    `json:"scope"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyName returns the canonical "scope:value" form of the reservation.
func (u *UniqueRecord) KeyName() string {
	return u.Scope + ":" + u.Value
}
