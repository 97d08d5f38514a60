// Package model contains domain models passed between layers.
package model

// JobPosting is one row of the catalog. Immutable once loaded; lives for
// the process lifetime.
type JobPosting struct {
	ID          string `json:"job_id"`
	Title       string `json:"job_title"`
	Category    string `json:"category"`
	Description string `json:"job_description"`
	Skills      string `json:"job_skill_set"`

	// CombinedText is the text the posting was embedded from:
	// title + description + skills. Synthesized at load time when the
	// CSV does not carry the column.
	CombinedText string `json:"-"`
}

// Recommendation pairs a catalog posting with its match score in [0, 1].
// Produced per request, ordered per the requested sort option.
type Recommendation struct {
	JobID       string  `json:"job_id"`
	Title       string  `json:"job_title"`
	Category    string  `json:"category"`
	Skills      string  `json:"skills"`
	Description string  `json:"job_description"`
	Score       float64 `json:"similarity_score"`
}

// CategoryPrediction is the classifier's arg-max over the label set.
type CategoryPrediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}
