// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the JSON API for the guide service.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formline/guidecms/internal/cache"
	"github.com/formline/guidecms/internal/middleware"
	"github.com/formline/guidecms/internal/service"
	"github.com/formline/guidecms/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	guides    *service.GuideService
	languages *cache.LanguageCache
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, cacheManager *cache.Manager) *Handler {
	return &Handler{
		db:        db,
		queries:   store.New(db),
		guides:    service.NewGuideService(db, cacheManager.Backend()),
		languages: cacheManager.Languages,
	}
}

// Routes returns the API route tree.
func (h *Handler) Routes(rps float64, burst int) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.EditorContext)
	r.Use(middleware.APIRateLimit(rps, burst))

	r.Get("/languages", h.ListLanguages)
	r.Get("/languages/{code}", h.GetLanguage)
	r.Get("/languages/{code}/documents", h.LanguageDocuments)

	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{number}", h.GetDocument)
	r.Get("/documents/{number}/originals", h.ListOriginals)
	r.Get("/documents/{number}/translations", h.ListDocumentTranslations)

	r.Get("/originals/{id}/translations/{code}", h.GetTranslation)

	r.Get("/guides/{number}/{code}", h.GetGuide)

	// Mutations require an attributable editor identity.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireEditor)

		r.Post("/languages", h.CreateLanguage)
		r.Post("/documents", h.CreateDocument)
		r.Post("/documents/{number}/originals", h.CreateOriginal)
		r.Post("/documents/{number}/translations/{code}", h.CreateDocumentTranslation)
		r.Post("/documents/{number}/translations/{code}/publish", h.Publish)
		r.Post("/documents/{number}/translations/{code}/unpublish", h.Unpublish)
		r.Post("/originals/{id}/translations", h.CreateTranslation)
	})

	return r
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains response metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// writeStoreError maps store failures to API error responses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsValidation(err):
		middleware.WriteAPIError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
	case store.IsDuplicate(err):
		middleware.WriteAPIError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case store.IsNotFound(err):
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Resource not found", nil)
	case errors.Is(err, store.ErrTxRetriesExhausted):
		slog.Error("store update exhausted retries", "error", err)
		middleware.WriteAPIError(w, http.StatusServiceUnavailable, "conflict_retries_exhausted",
			"The update could not be applied, try again", nil)
	default:
		slog.Error("store error", "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error",
			"Internal Server Error", nil)
	}
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_body",
			"Invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}
