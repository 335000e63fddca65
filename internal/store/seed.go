package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/formline/guidecms/internal/model"
)

// Seed registers the common language set when seeding is enabled and no
// languages exist yet. Registration goes through CreateLanguage, so the
// uniqueness reservations are taken as well.
func Seed(ctx context.Context, db *sql.DB, doSeed bool) error {
	if !doSeed {
		return nil
	}

	queries := New(db)

	langs, err := queries.ListLanguages(ctx)
	if err != nil {
		return fmt.Errorf("checking existing languages: %w", err)
	}
	if len(langs) > 0 {
		slog.Info("languages already present, skipping seed", "count", len(langs))
		return nil
	}

	seeded := 0
	for _, cl := range model.CommonLanguages {
		_, err := queries.CreateLanguage(ctx, CreateLanguageParams{
			Code: cl.Code,
			Name: cl.Name,
		})
		if err != nil {
			var dup *DuplicateKeyError
			if errors.As(err, &dup) {
				continue
			}
			return fmt.Errorf("seeding language %q: %w", cl.Code, err)
		}
		seeded++
	}

	slog.Info("seeded default languages", "count", seeded)
	return nil
}
