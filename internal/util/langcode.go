// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides language code validation and normalization helpers.
package util

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLangCode validates a language code against BCP 47 and returns its
// canonical base form ("ES" -> "es", "en-US" -> "en").
func NormalizeLangCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}

	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("unrecognized language code %q", code)
	}
	return base.String(), nil
}

// IsValidLangCode reports whether code parses as a language code.
func IsValidLangCode(code string) bool {
	_, err := NormalizeLangCode(code)
	return err == nil
}
