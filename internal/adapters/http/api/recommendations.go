// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/recommend"
)

// RecommendationsHandler handles resume upload and recommendation requests.
type RecommendationsHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps Dependencies, maxUploadBytes int64) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// recommendResponse mirrors the response schema for POST /api/v1/recommendations.
type recommendResponse struct {
	ResumeID          string                 `json:"resume_id"`
	Filename          string                 `json:"filename"`
	PredictedCategory string                 `json:"predicted_category"`
	Confidence        float64                `json:"confidence"`
	Recommendations   []model.Recommendation `json:"recommendations"`
}

// HandleRecommend handles POST /api/v1/recommendations requests. The body
// is multipart form data with a "resume" file and optional "top_n",
// "category" and "sort" fields.
func (h *RecommendationsHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Errorf("%w: limit is %d bytes", ErrPayloadLimit, maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingFile)
		return
	}
	defer file.Close()

	req, err := parseRankingOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.deps.ProcessResume(r.Context(), header.Filename, file, req)
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		ResumeID:          uuid.NewString(),
		Filename:          header.Filename,
		PredictedCategory: result.Predicted.Category,
		Confidence:        result.Predicted.Confidence,
		Recommendations:   result.Recommendations,
	})
}

// parseRankingOptions reads the optional top_n, category and sort form
// fields. Absent fields fall back to service defaults.
func parseRankingOptions(r *http.Request) (recommend.Request, error) {
	var req recommend.Request

	if v := r.FormValue("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return req, fmt.Errorf("%w: top_n must be a positive integer", ErrBadRequest)
		}
		req.TopN = n
	}
	req.Category = r.FormValue("category")

	switch r.FormValue("sort") {
	case "", "desc":
	case "asc":
		req.SortAscending = true
	default:
		return req, fmt.Errorf("%w: sort must be asc or desc", ErrBadRequest)
	}
	return req, nil
}
