// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/resumatch/resumatch/internal/domain/model"
)

// defaultJobsLimit bounds GET /api/v1/jobs when no limit is given.
const defaultJobsLimit = 100

// JobsHandler handles catalog browse requests.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

type jobsResponse struct {
	Jobs  []model.JobPosting `json:"jobs"`
	Count int                `json:"count"`
}

// HandleGetJobs handles GET /api/v1/jobs requests.
func (h *JobsHandler) HandleGetJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultJobsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}

	jobs, err := h.deps.Jobs(r.Context(), limit)
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs, Count: len(jobs)})
}
