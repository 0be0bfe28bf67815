package handlers

import (
	"net/http"

	"github.com/koltech/wallline/internal/linkpreview"
)

type LinkPreviewHandler struct {
	resolver *linkpreview.Resolver
}

func NewLinkPreviewHandler(resolver *linkpreview.Resolver) *LinkPreviewHandler {
	return &LinkPreviewHandler{resolver: resolver}
}

// Preview resolves metadata for the first URL in a message draft. The client
// passes either ?url= directly or ?text= with the raw draft; drafts without a
// URL get a 204 so no preview card is rendered.
func (h *LinkPreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("url")
	if input == "" {
		input = r.URL.Query().Get("text")
	}
	if input == "" {
		writeError(w, http.StatusBadRequest, "MISSING_URL", "Provide a url or text query parameter")
		return
	}

	rawURL, found := linkpreview.ExtractFirstURL(input)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	meta := h.resolver.Resolve(r.Context(), rawURL)
	writeJSON(w, http.StatusOK, meta)
}
