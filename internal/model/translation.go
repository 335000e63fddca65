// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Translation is the rendering of one Original into one target language.
// At most one exists per (original, language) pair.
type Translation struct {
	ID                int64         `json:"id"`
	OriginalID        int64         `json:"original_id"`
	LangCode          string        `json:"lang"`
	Text              string        `json:"text"`
	MachineTranslated bool          `json:"machine_translated,omitempty"` // produced by an automated tool
	AudioRef          uuid.NullUUID `json:"audio_ref,omitempty"`          // opaque handle to a recording; TTS otherwise
	CreatedAt         time.Time     `json:"created_at"`
}
