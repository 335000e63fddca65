package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/formline/guidecms/internal/middleware"
	"github.com/formline/guidecms/internal/model"
	"github.com/formline/guidecms/internal/store"
)

// createDocumentRequest is the body for POST /documents.
type createDocumentRequest struct {
	Number      int64  `json:"number"`
	Lang        string `json:"lang"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateDocument registers a new guide document.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := h.queries.CreateDocument(r.Context(), store.CreateDocumentParams{
		Number:      req.Number,
		Lang:        req.Lang,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("created document",
		"category", model.EventCategoryDocument,
		"editor", middleware.GetEditor(r),
		"number", doc.Number,
	)
	writeJSON(w, http.StatusCreated, Response{Data: doc})
}

// ListDocuments returns all documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.queries.ListDocuments(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, Response{Data: docs, Meta: &Meta{Total: len(docs)}})
}

// GetDocument returns one document by its public number.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.documentFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: doc})
}

// createOriginalRequest is the body for POST /documents/{number}/originals.
type createOriginalRequest struct {
	Number      int64  `json:"number"`
	Text        string `json:"text"`
	Description string `json:"description"`
}

// CreateOriginal adds a numbered source-text unit to a document.
func (h *Handler) CreateOriginal(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.documentFromURL(w, r)
	if !ok {
		return
	}

	var req createOriginalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	original, err := h.queries.CreateOriginal(r.Context(), store.CreateOriginalParams{
		DocumentID:  doc.ID,
		Number:      req.Number,
		Text:        req.Text,
		Description: req.Description,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("created original",
		"category", model.EventCategoryDocument,
		"editor", middleware.GetEditor(r),
		"document", doc.Number,
		"original", original.Number,
	)
	writeJSON(w, http.StatusCreated, Response{Data: original})
}

// ListOriginals lists a document's source-text units in order.
func (h *Handler) ListOriginals(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.documentFromURL(w, r)
	if !ok {
		return
	}

	originals, err := h.queries.ListOriginals(r.Context(), doc.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if originals == nil {
		originals = []model.Original{}
	}
	writeJSON(w, http.StatusOK, Response{Data: originals, Meta: &Meta{Total: len(originals)}})
}

// createTranslationRequest is the body for POST /originals/{id}/translations.
type createTranslationRequest struct {
	Lang              string `json:"lang"`
	Text              string `json:"text"`
	MachineTranslated bool   `json:"machine_translated"`
	AudioRef          string `json:"audio_ref"`
}

// CreateTranslation adds a translation of one original into one language.
func (h *Handler) CreateTranslation(w http.ResponseWriter, r *http.Request) {
	originalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_id",
			"Original ID must be an integer", nil)
		return
	}

	var req createTranslationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var audioRef uuid.NullUUID
	if req.AudioRef != "" {
		id, err := uuid.Parse(req.AudioRef)
		if err != nil {
			middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_audio_ref",
				"audio_ref must be a UUID", nil)
			return
		}
		audioRef = uuid.NullUUID{UUID: id, Valid: true}
	}

	tr, err := h.queries.CreateTranslation(r.Context(), store.CreateTranslationParams{
		OriginalID:        originalID,
		LangCode:          req.Lang,
		Text:              req.Text,
		MachineTranslated: req.MachineTranslated,
		AudioRef:          audioRef,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("created translation",
		"category", model.EventCategoryTranslation,
		"editor", middleware.GetEditor(r),
		"original", originalID,
		"lang", tr.LangCode,
	)
	writeJSON(w, http.StatusCreated, Response{Data: tr})
}

// GetTranslation returns the translation of one original in one language.
func (h *Handler) GetTranslation(w http.ResponseWriter, r *http.Request) {
	originalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_id",
			"Original ID must be an integer", nil)
		return
	}

	tr, err := h.queries.GetTranslation(r.Context(), originalID, chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: tr})
}

// CreateDocumentTranslation opens a draft publication record for
// (document, language).
func (h *Handler) CreateDocumentTranslation(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.documentFromURL(w, r)
	if !ok {
		return
	}

	dt, err := h.queries.CreateDocumentTranslation(r.Context(), doc.ID, chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("created document translation",
		"category", model.EventCategoryTranslation,
		"editor", middleware.GetEditor(r),
		"document", doc.Number,
		"lang", dt.LangCode,
	)
	writeJSON(w, http.StatusCreated, Response{Data: dt})
}

// ListDocumentTranslations lists the publication records of one document.
// ?status=published narrows the listing to the reader-visible set.
func (h *Handler) ListDocumentTranslations(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.documentFromURL(w, r)
	if !ok {
		return
	}

	var dts []model.DocumentTranslation
	var err error
	if r.URL.Query().Get("status") == model.TranslationStatusPublished {
		dts, err = h.queries.GetPublishedTranslations(r.Context(), doc.ID)
	} else {
		dts, err = h.queries.ListDocumentTranslations(r.Context(), doc.ID)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if dts == nil {
		dts = []model.DocumentTranslation{}
	}
	writeJSON(w, http.StatusOK, Response{Data: dts, Meta: &Meta{Total: len(dts)}})
}

// publishResult reports whether a publish or unpublish changed anything.
type publishResult struct {
	Number  int64  `json:"number"`
	Lang    string `json:"lang"`
	Status  string `json:"status"`
	Changed bool   `json:"changed"`
}

// Publish makes a document translation visible to readers.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	number, ok := numberFromURL(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	changed, err := h.guides.Publish(r.Context(), number, code, middleware.GetEditor(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: publishResult{
		Number:  number,
		Lang:    code,
		Status:  model.TranslationStatusPublished,
		Changed: changed,
	}})
}

// Unpublish takes a document translation back to draft.
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	number, ok := numberFromURL(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	changed, err := h.guides.Unpublish(r.Context(), number, code, middleware.GetEditor(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: publishResult{
		Number:  number,
		Lang:    code,
		Status:  model.TranslationStatusDraft,
		Changed: changed,
	}})
}

func numberFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_number",
			"Document number must be an integer", nil)
		return 0, false
	}
	return number, true
}

func (h *Handler) documentFromURL(w http.ResponseWriter, r *http.Request) (model.Document, bool) {
	number, ok := numberFromURL(w, r)
	if !ok {
		return model.Document{}, false
	}
	doc, err := h.queries.GetDocumentByNumber(r.Context(), number)
	if err != nil {
		writeStoreError(w, err)
		return model.Document{}, false
	}
	return doc, true
}
