package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formline/guidecms/internal/middleware"
	"github.com/formline/guidecms/internal/model"
	"github.com/formline/guidecms/internal/store"
)

// createLanguageRequest is the body for POST /languages.
type createLanguageRequest struct {
	Code        string `json:"lang"`
	Name        string `json:"language"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

// CreateLanguage registers a new language.
func (h *Handler) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	var req createLanguageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lang, err := h.queries.CreateLanguage(r.Context(), store.CreateLanguageParams{
		Code:        req.Code,
		Name:        req.Name,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := h.languages.Invalidate(r.Context()); err != nil {
		slog.Warn("failed to invalidate language cache", "error", err)
	}
	slog.Info("registered language",
		"category", model.EventCategoryLanguage,
		"editor", middleware.GetEditor(r),
		"lang", lang.Code,
	)

	writeJSON(w, http.StatusCreated, Response{Data: lang.ToPayload()})
}

// ListLanguages returns all registered languages in their API shape.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.languages.GetAll(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	payloads := make([]model.LanguagePayload, 0, len(langs))
	for i := range langs {
		payloads = append(payloads, langs[i].ToPayload())
	}
	writeJSON(w, http.StatusOK, Response{Data: payloads, Meta: &Meta{Total: len(payloads)}})
}

// GetLanguage returns one language by code.
func (h *Handler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.languages.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: lang.ToPayload()})
}

// LanguageDocuments lists the documents with a published translation in the
// language.
func (h *Handler) LanguageDocuments(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	// 404 for unknown languages, empty list for known ones without documents.
	if _, err := h.languages.GetByCode(r.Context(), code); err != nil {
		writeStoreError(w, err)
		return
	}

	docs, err := h.guides.DocumentsForLanguage(r.Context(), code)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, Response{Data: docs, Meta: &Meta{Total: len(docs)}})
}
