package util

import "testing"

func TestNormalizeLangCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"en", "en", false},
		{"ES", "es", false},
		{"en-US", "en", false},
		{"zh-Hant", "zh", false},
		{"ht", "ht", false},
		{" fr ", "fr", false},
		{"", "", true},
		{"!!", "", true},
		{"nonsense-overlong", "", true},
		{"123", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeLangCode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeLangCode(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeLangCode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeLangCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidLangCode(t *testing.T) {
	if !IsValidLangCode("es") {
		t.Error("IsValidLangCode(es) = false")
	}
	if IsValidLangCode("") {
		t.Error("IsValidLangCode(\"\") = true")
	}
	if IsValidLangCode("qqzz-invalid") {
		t.Error("IsValidLangCode(qqzz-invalid) = true")
	}
}
