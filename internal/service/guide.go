// Package service implements the read and publication use cases on top of
// the store, with caching for the public read paths.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/formline/guidecms/internal/cache"
	"github.com/formline/guidecms/internal/model"
	"github.com/formline/guidecms/internal/store"
	"github.com/formline/guidecms/internal/util"
)

const (
	guideCacheTTL    = 5 * time.Minute
	docListCacheTTL  = 5 * time.Minute
	keyGuidePrefix   = "guide:"
	keyDocsForPrefix = "documents:lang:"
)

// GuideSegment is one translated text unit of an assembled guide.
type GuideSegment struct {
	Number   int64         `json:"number"`
	Text     string        `json:"text"`
	AudioRef uuid.NullUUID `json:"audio_ref,omitempty"`
}

// Guide is a document assembled in one target language for rendering.
type Guide struct {
	Document model.Document        `json:"document"`
	Language model.LanguagePayload `json:"language"`
	Segments []GuideSegment        `json:"segments"`
}

// GuideService assembles published guides and drives publish/unpublish.
type GuideService struct {
	queries *store.Queries
	backend cache.Cacher
}

// NewGuideService creates a guide service.
func NewGuideService(db *sql.DB, backend cache.Cacher) *GuideService {
	return &GuideService{
		queries: store.New(db),
		backend: backend,
	}
}

// GetGuide assembles the published guide for (number, langCode). Returns
// store.ErrNotFound when the document does not exist or the pair is not
// published; readers never see drafts.
func (s *GuideService) GetGuide(ctx context.Context, number int64, langCode string) (Guide, error) {
	langCode = canonicalLang(langCode)
	cacheKey := fmt.Sprintf("%s%d:%s", keyGuidePrefix, number, langCode)
	if data, err := s.backend.Get(ctx, cacheKey); err == nil {
		var guide Guide
		if err := json.Unmarshal(data, &guide); err == nil {
			return guide, nil
		}
	}

	doc, err := s.queries.GetDocumentByNumber(ctx, number)
	if err != nil {
		return Guide{}, err
	}

	available, err := s.queries.IsTranslationAvailable(ctx, langCode, doc.ID)
	if err != nil {
		return Guide{}, err
	}
	if !available {
		return Guide{}, fmt.Errorf("guide %d in %q: %w", number, langCode, store.ErrNotFound)
	}

	lang, err := s.queries.GetLanguageByCode(ctx, langCode)
	if err != nil {
		return Guide{}, err
	}

	originals, err := s.queries.ListOriginals(ctx, doc.ID)
	if err != nil {
		return Guide{}, err
	}

	guide := Guide{
		Document: doc,
		Language: lang.ToPayload(),
		Segments: make([]GuideSegment, 0, len(originals)),
	}
	for _, original := range originals {
		tr, err := s.queries.GetTranslation(ctx, original.ID, langCode)
		if err != nil {
			if store.IsNotFound(err) {
				continue // untranslated segment, skip
			}
			return Guide{}, err
		}
		guide.Segments = append(guide.Segments, GuideSegment{
			Number:   original.Number,
			Text:     tr.Text,
			AudioRef: tr.AudioRef,
		})
	}

	if data, err := json.Marshal(guide); err == nil {
		_ = s.backend.Set(ctx, cacheKey, data, guideCacheTTL)
	}
	return guide, nil
}

// DocumentsForLanguage returns the documents with a published translation in
// langCode, cached briefly; publish/unpublish invalidates the entry.
func (s *GuideService) DocumentsForLanguage(ctx context.Context, langCode string) ([]model.Document, error) {
	langCode = canonicalLang(langCode)
	cacheKey := keyDocsForPrefix + langCode
	if data, err := s.backend.Get(ctx, cacheKey); err == nil {
		var docs []model.Document
		if err := json.Unmarshal(data, &docs); err == nil {
			return docs, nil
		}
	}

	docs, err := s.queries.GetDocumentsForLanguage(ctx, langCode)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(docs); err == nil {
		_ = s.backend.Set(ctx, cacheKey, data, docListCacheTTL)
	}
	return docs, nil
}

// Publish makes the (number, langCode) translation visible. Returns false
// when it was already published.
func (s *GuideService) Publish(ctx context.Context, number int64, langCode, editor string) (bool, error) {
	langCode = canonicalLang(langCode)
	dt, err := s.stateRecord(ctx, number, langCode)
	if err != nil {
		return false, err
	}

	changed, err := s.queries.PublishDocumentTranslation(ctx, dt.ID)
	if err != nil {
		return false, err
	}
	if changed {
		s.invalidate(ctx, number, langCode)
		slog.Info("published document translation",
			"category", model.EventCategoryPublish,
			"editor", editor,
			"number", number,
			"lang", langCode,
		)
	}
	return changed, nil
}

// Unpublish takes the (number, langCode) translation back to draft. Returns
// false when it was already a draft.
func (s *GuideService) Unpublish(ctx context.Context, number int64, langCode, editor string) (bool, error) {
	langCode = canonicalLang(langCode)
	dt, err := s.stateRecord(ctx, number, langCode)
	if err != nil {
		return false, err
	}

	changed, err := s.queries.UnpublishDocumentTranslation(ctx, dt.ID)
	if err != nil {
		return false, err
	}
	if changed {
		s.invalidate(ctx, number, langCode)
		slog.Info("unpublished document translation",
			"category", model.EventCategoryPublish,
			"editor", editor,
			"number", number,
			"lang", langCode,
		)
	}
	return changed, nil
}

// canonicalLang keeps cache keys and store lookups on one code spelling.
func canonicalLang(code string) string {
	if normalized, err := util.NormalizeLangCode(code); err == nil {
		return normalized
	}
	return code
}

func (s *GuideService) stateRecord(ctx context.Context, number int64, langCode string) (model.DocumentTranslation, error) {
	doc, err := s.queries.GetDocumentByNumber(ctx, number)
	if err != nil {
		return model.DocumentTranslation{}, err
	}
	return s.queries.GetDocumentTranslation(ctx, doc.ID, langCode)
}

func (s *GuideService) invalidate(ctx context.Context, number int64, langCode string) {
	_ = s.backend.Delete(ctx, fmt.Sprintf("%s%d:%s", keyGuidePrefix, number, langCode))
	_ = s.backend.Delete(ctx, keyDocsForPrefix+langCode)
}
