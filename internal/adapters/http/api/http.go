// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/resumatch/resumatch/internal/adapters/extract"
	service "github.com/resumatch/resumatch/internal/app"
	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/recommend"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ProcessResume runs the full extract→normalize→embed→rank pipeline
	// for one uploaded resume.
	ProcessResume(ctx context.Context, filename string, r io.Reader, req recommend.Request) (recommend.Result, error)

	// Read operations expose catalog data.
	Jobs(ctx context.Context, limit int) ([]model.JobPosting, error)
	Categories(ctx context.Context) ([]string, error)

	// SupportedFormats lists accepted resume file extensions.
	SupportedFormats() []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	recommendationsHandler *RecommendationsHandler
	jobsHandler            *JobsHandler
	categoriesHandler      *CategoriesHandler
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	uploadPageHandler      *uploadPageHandler
}

// NewServer creates a new API server with all handlers. maxUploadBytes
// caps the resume upload size.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxUploadBytes int64) *Server {
	return &Server{
		recommendationsHandler: NewRecommendationsHandler(deps, maxUploadBytes),
		jobsHandler:            NewJobsHandler(deps),
		categoriesHandler:      NewCategoriesHandler(deps),
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		uploadPageHandler:      newUploadPageHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/api/v1/recommendations", MetricsMiddleware(s.recommendationsHandler.HandleRecommend, "recommendations"))
	mux.HandleFunc("/api/v1/jobs", MetricsMiddleware(s.jobsHandler.HandleGetJobs, "jobs"))
	mux.HandleFunc("/api/v1/categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/", s.uploadPageHandler.HandleIndex)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusForError maps pipeline errors onto the single JSON error shape.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusUnprocessableEntity, "extraction_failed"
	case errors.Is(err, service.ErrEmptyResume):
		return http.StatusUnprocessableEntity, "empty_resume"
	case errors.Is(err, recommend.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
