// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// uploadPageHandler serves the embedded upload page.
type uploadPageHandler struct{}

// newUploadPageHandler creates a new upload page handler.
func newUploadPageHandler() *uploadPageHandler {
	return &uploadPageHandler{}
}

// HandleIndex handles GET / requests. It serves the single-page upload UI
// that drives the recommendations API.
func (h *uploadPageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, uploadFS, "index.html")
}
