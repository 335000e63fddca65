package model

import "testing"

func TestDocumentHasTranslation(t *testing.T) {
	doc := Document{TranslatedLangs: []string{"es", "ht"}}
	if !doc.HasTranslation("es") {
		t.Error("HasTranslation(es) = false")
	}
	if doc.HasTranslation("fr") {
		t.Error("HasTranslation(fr) = true")
	}

	empty := Document{}
	if empty.HasTranslation("es") {
		t.Error("HasTranslation on empty list = true")
	}
}

func TestLanguageToPayload(t *testing.T) {
	lang := Language{
		Code:        "es",
		Name:        "Spanish",
		Phone:       "555-0100",
		Description: "internal note",
	}
	p := lang.ToPayload()
	if p.Code != "es" || p.Name != "Spanish" || p.Phone != "555-0100" {
		t.Errorf("ToPayload = %+v", p)
	}
}

func TestUniqueRecordKeyName(t *testing.T) {
	u := UniqueRecord{Scope: ScopeDocument, Value: "101"}
	if got := u.KeyName(); got != "Document:101" {
		t.Errorf("KeyName = %q, want Document:101", got)
	}
}

func TestDocumentTranslationStatus(t *testing.T) {
	dt := DocumentTranslation{Status: TranslationStatusDraft}
	if !dt.IsDraft() || dt.IsPublished() {
		t.Errorf("draft record: IsDraft=%v IsPublished=%v", dt.IsDraft(), dt.IsPublished())
	}
	dt.Status = TranslationStatusPublished
	if dt.IsDraft() || !dt.IsPublished() {
		t.Errorf("published record: IsDraft=%v IsPublished=%v", dt.IsDraft(), dt.IsPublished())
	}
}
