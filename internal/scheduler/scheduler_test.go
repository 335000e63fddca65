// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/formline/guidecms/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "guidecms-scheduler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
	return db, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartStop(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := New(db, testLogger(), 90*24*time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestReconcileTranslationTagsNoDrift(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := store.New(db)

	doc, err := q.CreateDocument(ctx, store.CreateDocumentParams{
		Number: 1, Lang: "en", Title: "Guide",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	dt, err := q.CreateDocumentTranslation(ctx, doc.ID, "es")
	if err != nil {
		t.Fatalf("CreateDocumentTranslation: %v", err)
	}
	if _, err := q.PublishDocumentTranslation(ctx, dt.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	s := New(db, testLogger(), 90*24*time.Hour)
	repaired, err := s.ReconcileTranslationTags(ctx)
	if err != nil {
		t.Fatalf("ReconcileTranslationTags: %v", err)
	}
	if repaired != 0 {
		t.Errorf("repaired = %d on a consistent database, want 0", repaired)
	}
}

func TestReconcileTranslationTagsRepairsDrift(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := store.New(db)

	doc, err := q.CreateDocument(ctx, store.CreateDocumentParams{
		Number: 2, Lang: "en", Title: "Guide",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	// Stale tag: cached language with no published record behind it.
	if _, err := q.AddTranslationTag(ctx, doc.ID, "es"); err != nil {
		t.Fatalf("AddTranslationTag: %v", err)
	}

	// Missing tag: published record the cache never picked up.
	dt, err := q.CreateDocumentTranslation(ctx, doc.ID, "ht")
	if err != nil {
		t.Fatalf("CreateDocumentTranslation: %v", err)
	}
	if _, err := q.PublishDocumentTranslation(ctx, dt.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := q.RemoveTranslationTag(ctx, doc.ID, "ht"); err != nil {
		t.Fatalf("RemoveTranslationTag: %v", err)
	}

	s := New(db, testLogger(), 90*24*time.Hour)
	repaired, err := s.ReconcileTranslationTags(ctx)
	if err != nil {
		t.Fatalf("ReconcileTranslationTags: %v", err)
	}
	if repaired != 2 {
		t.Errorf("repaired = %d, want 2", repaired)
	}

	got, err := q.GetDocumentByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocumentByID: %v", err)
	}
	if got.HasTranslation("es") {
		t.Errorf("stale tag es still present: %v", got.TranslatedLangs)
	}
	if !got.HasTranslation("ht") {
		t.Errorf("missing tag ht not restored: %v", got.TranslatedLangs)
	}

	// A second pass finds nothing to do.
	repaired, err = s.ReconcileTranslationTags(ctx)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if repaired != 0 {
		t.Errorf("repaired = %d on second pass, want 0", repaired)
	}
}

func TestPruneEvents(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := store.New(db)

	if _, err := q.CreateEvent(ctx, store.CreateEventParams{
		Level:    "info",
		Category: "system",
		Message:  "old entry",
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	// Zero retention prunes everything already written.
	s := New(db, testLogger(), 0)
	if err := s.pruneEvents(ctx); err != nil {
		t.Fatalf("pruneEvents: %v", err)
	}

	count, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d after prune, want 0", count)
	}
}
