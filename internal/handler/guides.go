package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetGuide returns a document assembled in one language, segments in order.
// Only published translations are served.
func (h *Handler) GetGuide(w http.ResponseWriter, r *http.Request) {
	number, ok := numberFromURL(w, r)
	if !ok {
		return
	}

	guide, err := h.guides.GetGuide(r.Context(), number, chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: guide})
}
