package training

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/resumatch/resumatch/internal/domain/labels"
	"github.com/resumatch/resumatch/internal/domain/neural"
)

// Artifact file names inside the models directory.
const (
	matcherFile    = "matcher.gob"
	classifierFile = "classifier.gob"
	labelsFile     = "labels.json"
)

// Artifacts manages the persisted model files for one models directory.
// A training run is skipped at startup when all three files are present.
type Artifacts struct {
	dir string
}

// NewArtifacts binds to a models directory. The directory is created on
// first Save, not here.
func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{dir: dir}
}

// Dir returns the models directory.
func (a *Artifacts) Dir() string { return a.dir }

// Exist reports whether all artifact files are present. A partial set
// counts as missing so a crashed save triggers a clean retrain.
func (a *Artifacts) Exist() bool {
	for _, name := range []string{matcherFile, classifierFile, labelsFile} {
		if _, err := os.Stat(filepath.Join(a.dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Save persists the trained models and the label encoder.
func (a *Artifacts) Save(res *Result) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create models dir %s: %w", a.dir, err)
	}
	if err := res.Matcher.Save(filepath.Join(a.dir, matcherFile)); err != nil {
		return fmt.Errorf("save matcher: %w", err)
	}
	if err := res.Classifier.Save(filepath.Join(a.dir, classifierFile)); err != nil {
		return fmt.Errorf("save classifier: %w", err)
	}
	if err := res.Encoder.Save(filepath.Join(a.dir, labelsFile)); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	return nil
}

// Load restores a persisted Result, validating the models against the
// embedding dimension currently in use.
func (a *Artifacts) Load(embeddingDim int) (*Result, error) {
	if !a.Exist() {
		return nil, fmt.Errorf("%w: %s", ErrArtifactsMissing, a.dir)
	}
	enc, err := labels.Load(filepath.Join(a.dir, labelsFile))
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	matcher, err := neural.LoadMatcher(filepath.Join(a.dir, matcherFile), embeddingDim)
	if err != nil {
		return nil, fmt.Errorf("load matcher: %w", err)
	}
	classifier, err := neural.LoadClassifier(filepath.Join(a.dir, classifierFile), embeddingDim, enc.Len())
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	return &Result{Matcher: matcher, Classifier: classifier, Encoder: enc}, nil
}
