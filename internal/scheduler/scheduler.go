// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/formline/guidecms/internal/store"
)

// Scheduler runs periodic maintenance: event log pruning and reconciliation
// of the documents' cached translation lists against the publication records.
type Scheduler struct {
	db             *sql.DB
	cron           *cron.Cron
	logger         *slog.Logger
	eventRetention time.Duration
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, eventRetention time.Duration) *Scheduler {
	return &Scheduler{
		db:             db,
		cron:           cron.New(),
		logger:         logger,
		eventRetention: eventRetention,
	}
}

// Start registers the maintenance jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	// Hourly, on the hour
	_, err := s.cron.AddFunc("0 * * * *", func() {
		ctx := context.Background()
		if err := s.pruneEvents(ctx); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
		if _, err := s.ReconcileTranslationTags(ctx); err != nil {
			s.logger.Error("failed to reconcile translation tags", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// pruneEvents removes event log entries past the retention window.
func (s *Scheduler) pruneEvents(ctx context.Context) error {
	queries := store.New(s.db)
	cutoff := time.Now().UTC().Add(-s.eventRetention)

	pruned, err := queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if pruned > 0 {
		remaining, err := queries.CountEvents(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("pruned event log", "removed", pruned, "remaining", remaining, "cutoff", cutoff)
	}
	return nil
}

// ReconcileTranslationTags recomputes each document's cached translation
// list from its publication records and repairs any drift. The cache is a
// materialized view; publish/unpublish keeps it in sync under normal
// operation, so any repair here is logged at WARN. Returns the number of
// documents repaired.
func (s *Scheduler) ReconcileTranslationTags(ctx context.Context) (int, error) {
	queries := store.New(s.db)

	docs, err := queries.ListDocuments(ctx)
	if err != nil {
		return 0, err
	}

	published, err := queries.ListPublishedTranslationKeys(ctx)
	if err != nil {
		return 0, err
	}
	byDoc := make(map[int64]map[string]bool)
	for _, dt := range published {
		if byDoc[dt.DocumentID] == nil {
			byDoc[dt.DocumentID] = make(map[string]bool)
		}
		byDoc[dt.DocumentID][dt.LangCode] = true
	}

	repaired := 0
	for _, doc := range docs {
		want := byDoc[doc.ID]

		var stale, missing []string
		for _, code := range doc.TranslatedLangs {
			if !want[code] {
				stale = append(stale, code)
			}
		}
		for code := range want {
			if !doc.HasTranslation(code) {
				missing = append(missing, code)
			}
		}
		if len(stale) == 0 && len(missing) == 0 {
			continue
		}

		// All repairs to one document land atomically.
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return repaired, err
		}
		qtx := queries.WithTx(tx)
		for _, code := range stale {
			if _, err := qtx.RemoveTranslationTag(ctx, doc.ID, code); err != nil {
				_ = tx.Rollback()
				return repaired, err
			}
			s.logger.Warn("repaired stale translation tag",
				"category", "cache", "number", doc.Number, "lang", code)
		}
		for _, code := range missing {
			if _, err := qtx.AddTranslationTag(ctx, doc.ID, code); err != nil {
				_ = tx.Rollback()
				return repaired, err
			}
			s.logger.Warn("repaired missing translation tag",
				"category", "cache", "number", doc.Number, "lang", code)
		}
		if err := tx.Commit(); err != nil {
			return repaired, err
		}
		repaired += len(stale) + len(missing)
	}

	return repaired, nil
}
