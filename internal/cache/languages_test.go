package cache

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/formline/guidecms/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "guidecms-cache-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestLanguageCache_GetAll(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	queries := store.New(db)

	if _, err := queries.CreateLanguage(ctx, store.CreateLanguageParams{Code: "es", Name: "Spanish"}); err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}

	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	lc := NewLanguageCache(backend, queries)

	langs, err := lc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(langs) != 1 || langs[0].Code != "es" {
		t.Fatalf("GetAll = %v, want single es entry", langs)
	}

	// Second call is served from cache: a language added behind the
	// cache's back stays invisible until invalidation.
	if _, err := queries.CreateLanguage(ctx, store.CreateLanguageParams{Code: "fr", Name: "French"}); err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}
	langs, err = lc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(langs) != 1 {
		t.Errorf("len = %d from cache, want 1", len(langs))
	}

	if err := lc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	langs, err = lc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll after invalidate: %v", err)
	}
	if len(langs) != 2 {
		t.Errorf("len = %d after invalidate, want 2", len(langs))
	}
}

func TestLanguageCache_GetByCode(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	queries := store.New(db)

	created, err := queries.CreateLanguage(ctx, store.CreateLanguageParams{Code: "ht", Name: "Haitian Creole"})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}

	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	lc := NewLanguageCache(backend, queries)

	lang, err := lc.GetByCode(ctx, "ht")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if lang.ID != created.ID {
		t.Errorf("ID = %d, want %d", lang.ID, created.ID)
	}

	// Cached now.
	has, err := backend.Has(ctx, keyLanguageByCode+"ht")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !has {
		t.Error("expected per-code entry in backend after GetByCode")
	}

	_, err = lc.GetByCode(ctx, "xx")
	if !store.IsNotFound(err) {
		t.Errorf("GetByCode(xx) err = %v, want ErrNotFound", err)
	}
}

func TestManager_MemoryBackend(t *testing.T) {
	db := testDB(t)
	queries := store.New(db)

	m := NewManager(queries, DefaultConfig())
	defer m.Stop()

	if m.Info().Backend != "memory" {
		t.Errorf("Backend = %q, want memory", m.Info().Backend)
	}
	if m.IsRedis() {
		t.Error("IsRedis() = true for memory backend")
	}
	if m.Backend() == nil {
		t.Fatal("Backend() = nil")
	}
	if m.Languages == nil {
		t.Fatal("Languages cache not initialized")
	}

	if err := m.Preload(context.Background()); err != nil {
		t.Errorf("Preload: %v", err)
	}
}

func TestManager_RedisFallback(t *testing.T) {
	db := testDB(t)
	queries := store.New(db)

	cfg := DefaultConfig()
	cfg.Type = "redis"
	cfg.RedisURL = "redis://127.0.0.1:1/0" // nothing listens here
	cfg.FallbackToMemory = true

	m := NewManager(queries, cfg)
	defer m.Stop()

	info := m.Info()
	if info.Backend != "memory" {
		t.Errorf("Backend = %q, want memory fallback", info.Backend)
	}
	if !info.IsFallback {
		t.Error("IsFallback = false, want true")
	}
}
