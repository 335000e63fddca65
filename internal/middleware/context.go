// Package middleware provides HTTP middleware for editor identity and API
// request handling.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is the type for context keys used by this package.
type ContextKey string

// ContextKeyEditor is the context key for the editor identity.
const ContextKeyEditor ContextKey = "editor"

// EditorHeader carries the identity asserted by the upstream identity
// provider. Authentication itself happens outside this service; the value is
// only recorded for auditing.
const EditorHeader = "X-Editor"

// EditorContext places the editor identity from the request header into the
// request context.
func EditorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		editor := strings.TrimSpace(r.Header.Get(EditorHeader))
		if editor != "" {
			ctx := context.WithValue(r.Context(), ContextKeyEditor, editor)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// GetEditor retrieves the editor identity from the request context. Returns
// an empty string for anonymous requests.
func GetEditor(r *http.Request) string {
	editor, _ := r.Context().Value(ContextKeyEditor).(string)
	return editor
}

// RequireEditor rejects requests without an editor identity. Mutating
// endpoints use it so every change is attributable.
func RequireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetEditor(r) == "" {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized",
				"Missing "+EditorHeader+" header", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
