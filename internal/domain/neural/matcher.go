package neural

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Matcher hidden layer sizes, following the original tower widths.
const (
	matcherHidden1 = 256
	matcherHidden2 = 64
)

// Matcher scores (resume, job) embedding pairs. The network consumes the
// concatenated pair and emits a sigmoid compatibility score in [0, 1].
type Matcher struct {
	net *Network
}

// NewMatcher builds an untrained matcher for the given embedding dimension.
func NewMatcher(embeddingDim int, rng *rand.Rand) (*Matcher, error) {
	if embeddingDim <= 0 {
		return nil, fmt.Errorf("%w: embedding dim %d", ErrInvalidArchitecture, embeddingDim)
	}
	net, err := NewNetwork([]int{2 * embeddingDim, matcherHidden1, matcherHidden2, 1}, OutputSigmoid, rng)
	if err != nil {
		return nil, err
	}
	return &Matcher{net: net}, nil
}

// EmbeddingDim returns the per-side embedding dimension the matcher expects.
func (m *Matcher) EmbeddingDim() int { return m.net.InputDim() / 2 }

// Score evaluates a single (resume, job) pair.
func (m *Matcher) Score(resume, job []float32) (float64, error) {
	scores, err := m.ScoreAll(resume, [][]float32{job})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// ScoreAll scores the resume against every job embedding in one batched
// forward pass. Output order follows the input order.
func (m *Matcher) ScoreAll(resume []float32, jobs [][]float32) ([]float64, error) {
	dim := m.EmbeddingDim()
	if len(resume) != dim {
		return nil, fmt.Errorf("%w: resume embedding has %d dims, matcher wants %d", ErrDimensionMismatch, len(resume), dim)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	x := mat.NewDense(len(jobs), 2*dim, nil)
	left := rowFromFloat32(resume)
	for i, job := range jobs {
		if len(job) != dim {
			return nil, fmt.Errorf("%w: job embedding %d has %d dims, matcher wants %d", ErrDimensionMismatch, i, len(job), dim)
		}
		row := make([]float64, 0, 2*dim)
		row = append(row, left...)
		row = append(row, rowFromFloat32(job)...)
		x.SetRow(i, row)
	}

	out, err := m.net.Forward(x)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(jobs))
	for i := range scores {
		scores[i] = out.At(i, 0)
	}
	return scores, nil
}

// Train fits the matcher on embedding pairs with binary labels
// (1 = same category, 0 = different).
func (m *Matcher) Train(left, right [][]float32, targets []float64, cfg TrainConfig) error {
	if len(left) != len(right) || len(left) != len(targets) {
		return fmt.Errorf("%w: %d left, %d right, %d targets", ErrDimensionMismatch, len(left), len(right), len(targets))
	}
	if len(left) == 0 {
		return fmt.Errorf("%w: empty training set", ErrDimensionMismatch)
	}
	dim := m.EmbeddingDim()

	x := mat.NewDense(len(left), 2*dim, nil)
	y := mat.NewDense(len(left), 1, nil)
	for i := range left {
		if len(left[i]) != dim || len(right[i]) != dim {
			return fmt.Errorf("%w: pair %d dims (%d, %d), matcher wants %d", ErrDimensionMismatch, i, len(left[i]), len(right[i]), dim)
		}
		row := make([]float64, 0, 2*dim)
		row = append(row, rowFromFloat32(left[i])...)
		row = append(row, rowFromFloat32(right[i])...)
		x.SetRow(i, row)
		y.Set(i, 0, targets[i])
	}
	return m.net.Train(x, y, cfg)
}

// Save persists the matcher weights.
func (m *Matcher) Save(path string) error {
	return saveNetwork(path, m.net)
}

// LoadMatcher restores a persisted matcher and validates it against the
// expected embedding dimension.
func LoadMatcher(path string, embeddingDim int) (*Matcher, error) {
	net, err := loadNetwork(path)
	if err != nil {
		return nil, err
	}
	if net.output != OutputSigmoid || net.OutputDim() != 1 {
		return nil, fmt.Errorf("%w: %s is not a matcher artifact", ErrLoadModel, path)
	}
	if net.InputDim() != 2*embeddingDim {
		return nil, fmt.Errorf("%w: matcher trained for dim %d, embedder produces %d", ErrDimensionMismatch, net.InputDim()/2, embeddingDim)
	}
	return &Matcher{net: net}, nil
}
