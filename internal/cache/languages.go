package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/formline/guidecms/internal/model"
	"github.com/formline/guidecms/internal/store"
	"github.com/formline/guidecms/internal/util"
)

const (
	keyLanguagesAll   = "languages:all"
	keyLanguageByCode = "languages:code:"
	languagesCacheTTL = time.Hour
)

// LanguageCache provides cached access to the language registry. Entries are
// invalidated on every language registration, so a long TTL is safe.
type LanguageCache struct {
	backend Cacher
	queries *store.Queries
}

// NewLanguageCache creates a language cache over the given backend.
func NewLanguageCache(backend Cacher, queries *store.Queries) *LanguageCache {
	return &LanguageCache{backend: backend, queries: queries}
}

// GetAll retrieves all languages, from cache when possible.
func (c *LanguageCache) GetAll(ctx context.Context) ([]model.Language, error) {
	if data, err := c.backend.Get(ctx, keyLanguagesAll); err == nil {
		var langs []model.Language
		if err := json.Unmarshal(data, &langs); err == nil {
			return langs, nil
		}
		// Corrupt entry: fall through to a fresh load.
	}

	langs, err := c.queries.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(langs); err == nil {
		_ = c.backend.Set(ctx, keyLanguagesAll, data, languagesCacheTTL)
	}
	return langs, nil
}

// GetByCode retrieves one language, from cache when possible. Returns
// store.ErrNotFound (wrapped) for unknown codes.
func (c *LanguageCache) GetByCode(ctx context.Context, code string) (model.Language, error) {
	if normalized, err := util.NormalizeLangCode(code); err == nil {
		code = normalized
	}
	key := keyLanguageByCode + code
	if data, err := c.backend.Get(ctx, key); err == nil {
		var lang model.Language
		if err := json.Unmarshal(data, &lang); err == nil {
			return lang, nil
		}
	}

	lang, err := c.queries.GetLanguageByCode(ctx, code)
	if err != nil {
		return model.Language{}, err
	}

	if data, err := json.Marshal(lang); err == nil {
		_ = c.backend.Set(ctx, key, data, languagesCacheTTL)
	}
	return lang, nil
}

// Invalidate drops all cached language entries.
func (c *LanguageCache) Invalidate(ctx context.Context) error {
	if err := c.backend.Delete(ctx, keyLanguagesAll); err != nil && !errors.Is(err, ErrCacheClosed) {
		return fmt.Errorf("invalidating language cache: %w", err)
	}

	langs, err := c.queries.ListLanguages(ctx)
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if err := c.backend.Delete(ctx, keyLanguageByCode+lang.Code); err != nil {
			return fmt.Errorf("invalidating language cache: %w", err)
		}
	}
	return nil
}
