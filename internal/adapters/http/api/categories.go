// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// CategoriesHandler handles category listing requests.
type CategoriesHandler struct {
	deps Dependencies
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps Dependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Formats    []string `json:"supported_formats"`
}

// HandleGetCategories handles GET /api/v1/categories requests. The upload
// page uses it to populate the filter dropdown and the accept attribute.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	categories, err := h.deps.Categories(r.Context())
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: categories,
		Formats:    h.deps.SupportedFormats(),
	})
}
