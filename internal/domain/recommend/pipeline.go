// Package recommend orchestrates classification, pairwise scoring and
// ranking over the job catalog.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/resumatch/resumatch/internal/domain/labels"
	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/neural"
)

// AllCategories disables category filtering.
const AllCategories = "all"

// Scorer scores one resume embedding against every job embedding in a
// single batched call.
type Scorer interface {
	ScoreAll(resume []float32, jobs [][]float32) ([]float64, error)
}

// Classifier returns a probability distribution over the label set.
type Classifier interface {
	Predict(vec []float32) ([]float64, error)
}

// Catalog exposes the loaded postings and their precomputed embeddings.
// Jobs()[i] corresponds to Embeddings()[i].
type Catalog interface {
	Jobs() []model.JobPosting
	Embeddings() [][]float32
	Len() int
}

// Request carries the per-call ranking options.
type Request struct {
	// TopN bounds the result count before filtering.
	TopN int
	// Category filters results; AllCategories (or "") keeps everything.
	Category string
	// SortAscending flips the default high-to-low score order.
	SortAscending bool
}

// Result is the pipeline output for one resume.
type Result struct {
	Predicted       model.CategoryPrediction `json:"predicted_category"`
	Recommendations []model.Recommendation   `json:"recommendations"`
}

// Pipeline wires the trained models, the label encoder and the catalog.
type Pipeline struct {
	scorer     Scorer
	classifier Classifier
	encoder    *labels.Encoder
	catalog    Catalog
}

// New builds a Pipeline. All dependencies are required.
func New(scorer Scorer, classifier Classifier, encoder *labels.Encoder, catalog Catalog) (*Pipeline, error) {
	if scorer == nil || classifier == nil || encoder == nil || catalog == nil {
		return nil, ErrMissingDependency
	}
	return &Pipeline{
		scorer:     scorer,
		classifier: classifier,
		encoder:    encoder,
		catalog:    catalog,
	}, nil
}

// Recommend classifies the resume embedding, scores it against the whole
// catalog in one batch, and returns at most min(TopN, catalog size) rows.
// Ranking is by score descending with ties kept in catalog order; the
// category filter and the requested sort order are applied afterwards, so
// a filter can shrink the result below TopN but never widen it.
func (p *Pipeline) Recommend(ctx context.Context, resume []float32, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("recommend canceled: %w", err)
	}
	if req.TopN <= 0 {
		return Result{}, fmt.Errorf("%w: top_n must be positive", ErrInvalidRequest)
	}

	probs, err := p.classifier.Predict(resume)
	if err != nil {
		return Result{}, fmt.Errorf("classify resume: %w", err)
	}
	idx, confidence := neural.ArgMax(probs)
	category, err := p.encoder.Decode(idx)
	if err != nil {
		return Result{}, fmt.Errorf("decode predicted class: %w", err)
	}

	scores, err := p.scorer.ScoreAll(resume, p.catalog.Embeddings())
	if err != nil {
		return Result{}, fmt.Errorf("score catalog: %w", err)
	}
	jobs := p.catalog.Jobs()
	if len(scores) != len(jobs) {
		return Result{}, fmt.Errorf("%w: %d scores for %d jobs", neural.ErrDimensionMismatch, len(scores), len(jobs))
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if req.TopN < len(order) {
		order = order[:req.TopN]
	}

	recs := make([]model.Recommendation, 0, len(order))
	for _, i := range order {
		if !matchesFilter(jobs[i].Category, req.Category) {
			continue
		}
		recs = append(recs, model.Recommendation{
			JobID:       jobs[i].ID,
			Title:       jobs[i].Title,
			Category:    jobs[i].Category,
			Skills:      jobs[i].Skills,
			Description: jobs[i].Description,
			Score:       scores[i],
		})
	}
	if req.SortAscending {
		reverse(recs)
	}

	return Result{
		Predicted:       model.CategoryPrediction{Category: category, Confidence: confidence},
		Recommendations: recs,
	}, nil
}

func matchesFilter(category, filter string) bool {
	return filter == "" || filter == AllCategories || category == filter
}

// reverse flips a descending-stable ranking into ascending order while
// keeping relative order of equal scores deterministic.
func reverse(recs []model.Recommendation) {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
}
