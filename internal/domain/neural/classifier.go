package neural

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Classifier hidden layer sizes, following the original architecture.
const (
	classifierHidden1 = 256
	classifierHidden2 = 128
)

// Classifier maps a resume embedding to a probability distribution over
// the category label set.
type Classifier struct {
	net *Network
}

// NewClassifier builds an untrained classifier.
func NewClassifier(embeddingDim, numClasses int, rng *rand.Rand) (*Classifier, error) {
	if embeddingDim <= 0 || numClasses <= 0 {
		return nil, fmt.Errorf("%w: embedding dim %d, classes %d", ErrInvalidArchitecture, embeddingDim, numClasses)
	}
	net, err := NewNetwork([]int{embeddingDim, classifierHidden1, classifierHidden2, numClasses}, OutputSoftmax, rng)
	if err != nil {
		return nil, err
	}
	return &Classifier{net: net}, nil
}

// EmbeddingDim returns the embedding dimension the classifier expects.
func (c *Classifier) EmbeddingDim() int { return c.net.InputDim() }

// NumClasses returns the size of the label set.
func (c *Classifier) NumClasses() int { return c.net.OutputDim() }

// Predict returns the probability distribution for one embedding.
// Probabilities sum to 1.
func (c *Classifier) Predict(vec []float32) ([]float64, error) {
	if len(vec) != c.EmbeddingDim() {
		return nil, fmt.Errorf("%w: embedding has %d dims, classifier wants %d", ErrDimensionMismatch, len(vec), c.EmbeddingDim())
	}
	x := mat.NewDense(1, len(vec), rowFromFloat32(vec))
	out, err := c.net.Forward(x)
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, out), nil
}

// ArgMax returns the winning class index and its probability.
func ArgMax(probs []float64) (int, float64) {
	best, bestP := 0, 0.0
	for i, p := range probs {
		if p > bestP {
			best, bestP = i, p
		}
	}
	return best, bestP
}

// Train fits the classifier on embeddings with integer class targets.
func (c *Classifier) Train(x [][]float32, classes []int, cfg TrainConfig) error {
	if len(x) != len(classes) {
		return fmt.Errorf("%w: %d samples, %d targets", ErrDimensionMismatch, len(x), len(classes))
	}
	if len(x) == 0 {
		return fmt.Errorf("%w: empty training set", ErrDimensionMismatch)
	}
	dim, k := c.EmbeddingDim(), c.NumClasses()

	xm := mat.NewDense(len(x), dim, nil)
	ym := mat.NewDense(len(x), k, nil)
	for i := range x {
		if len(x[i]) != dim {
			return fmt.Errorf("%w: sample %d has %d dims, classifier wants %d", ErrDimensionMismatch, i, len(x[i]), dim)
		}
		if classes[i] < 0 || classes[i] >= k {
			return fmt.Errorf("%w: class %d out of range [0, %d)", ErrDimensionMismatch, classes[i], k)
		}
		xm.SetRow(i, rowFromFloat32(x[i]))
		ym.Set(i, classes[i], 1)
	}
	return c.net.Train(xm, ym, cfg)
}

// Save persists the classifier weights.
func (c *Classifier) Save(path string) error {
	return saveNetwork(path, c.net)
}

// LoadClassifier restores a persisted classifier and validates it against
// the expected embedding dimension and label count.
func LoadClassifier(path string, embeddingDim, numClasses int) (*Classifier, error) {
	net, err := loadNetwork(path)
	if err != nil {
		return nil, err
	}
	if net.output != OutputSoftmax {
		return nil, fmt.Errorf("%w: %s is not a classifier artifact", ErrLoadModel, path)
	}
	if net.InputDim() != embeddingDim {
		return nil, fmt.Errorf("%w: classifier trained for dim %d, embedder produces %d", ErrDimensionMismatch, net.InputDim(), embeddingDim)
	}
	if net.OutputDim() != numClasses {
		return nil, fmt.Errorf("%w: classifier trained for %d classes, label encoder has %d", ErrDimensionMismatch, net.OutputDim(), numClasses)
	}
	return &Classifier{net: net}, nil
}
