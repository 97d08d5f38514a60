package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/pkg/metrics"
)

// Column names recognized in the catalog CSV header.
const (
	colJobID       = "job_id"
	colTitle       = "job_title"
	colDescription = "job_description"
	colSkills      = "job_skill_set"
	colCategory    = "category"
	colCombined    = "combined_text"
)

// Store holds the job catalog in memory. Postings are loaded once from CSV
// and never mutated afterwards; embeddings are attached after the embedding
// pass and guarded separately so reads during startup stay safe.
type Store struct {
	jobs       []model.JobPosting
	categories []string

	mu         sync.RWMutex
	embeddings [][]float32
}

// LoadCSV reads the catalog from path. The header row names the columns;
// order does not matter. Rows missing an ID or category are rejected rather
// than silently skipped so a bad export fails loudly at startup.
func LoadCSV(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenCatalog, err)
	}
	defer f.Close()

	s, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return s, nil
}

// Parse reads catalog rows from r. Split out of LoadCSV for tests.
func Parse(ctx context.Context, r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", ErrBadCatalog, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colJobID, colTitle, colDescription, colCategory} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadCatalog, required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var jobs []model.JobPosting
	seen := make(map[string]struct{})
	catSet := make(map[string]struct{})
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadCatalog, line, err)
		}

		job := model.JobPosting{
			ID:           field(rec, colJobID),
			Title:        field(rec, colTitle),
			Category:     field(rec, colCategory),
			Description:  field(rec, colDescription),
			Skills:       field(rec, colSkills),
			CombinedText: field(rec, colCombined),
		}
		if job.ID == "" {
			return nil, fmt.Errorf("%w: line %d: empty job_id", ErrBadCatalog, line)
		}
		if _, dup := seen[job.ID]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate job_id %q", ErrBadCatalog, line, job.ID)
		}
		if job.Category == "" {
			return nil, fmt.Errorf("%w: line %d: empty category", ErrBadCatalog, line)
		}
		if job.CombinedText == "" {
			job.CombinedText = combineFields(job)
		}
		seen[job.ID] = struct{}{}
		catSet[job.Category] = struct{}{}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrBadCatalog)
	}

	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	metrics.UpdateCatalogSize(len(jobs))
	return &Store{jobs: jobs, categories: categories}, nil
}

// combineFields builds the text used for embedding when the CSV does not
// ship a precomputed combined_text column: title, then description, then
// skills.
func combineFields(job model.JobPosting) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{job.Title, job.Description, job.Skills} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Jobs returns all postings in catalog order. Callers must not mutate the
// returned slice.
func (s *Store) Jobs() []model.JobPosting { return s.jobs }

// Len returns the number of postings.
func (s *Store) Len() int { return len(s.jobs) }

// Categories returns the distinct categories, sorted.
func (s *Store) Categories() []string { return s.categories }

// Get looks up a posting by ID.
func (s *Store) Get(id string) (model.JobPosting, error) {
	for _, job := range s.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return model.JobPosting{}, fmt.Errorf("%w: job %q", ErrNotFound, id)
}

// CombinedTexts returns the embedding input for every posting, in catalog
// order.
func (s *Store) CombinedTexts() []string {
	texts := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		texts[i] = job.CombinedText
	}
	return texts
}

// SetEmbeddings attaches one embedding per posting, in catalog order.
func (s *Store) SetEmbeddings(vecs [][]float32) error {
	if len(vecs) != len(s.jobs) {
		return fmt.Errorf("%w: %d embeddings for %d jobs", ErrBadCatalog, len(vecs), len(s.jobs))
	}
	s.mu.Lock()
	s.embeddings = vecs
	s.mu.Unlock()
	return nil
}

// Embeddings returns the catalog embeddings in catalog order, or nil when
// the embedding pass has not run yet.
func (s *Store) Embeddings() [][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddings
}
