// Package neural implements the small feed-forward networks behind the
// match scorer and the category classifier.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// OutputKind selects the final-layer activation.
type OutputKind string

// Supported output activations.
const (
	OutputSigmoid OutputKind = "sigmoid"
	OutputSoftmax OutputKind = "softmax"
)

// TrainConfig holds the mini-batch SGD knobs.
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Rng          *rand.Rand
}

func (c TrainConfig) withDefaults() TrainConfig {
	if c.Epochs <= 0 {
		c.Epochs = 5
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.001
	}
	if c.Rng == nil {
		c.Rng = rand.New(rand.NewSource(42)) //nolint:gosec // deterministic seed for reproducible training
	}
	return c
}

// Network is a dense multi-layer perceptron with ReLU hidden layers and a
// sigmoid or softmax head. Inference is safe for concurrent use once
// training is done; training mutates weights and is not.
type Network struct {
	sizes   []int
	weights []*mat.Dense // layer l: sizes[l] x sizes[l+1]
	biases  [][]float64  // layer l: len sizes[l+1]
	output  OutputKind
}

// NewNetwork builds a network with He-initialized weights drawn from rng.
func NewNetwork(sizes []int, output OutputKind, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("%w: need at least input and output layers", ErrInvalidArchitecture)
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: non-positive layer size", ErrInvalidArchitecture)
		}
	}
	if output != OutputSigmoid && output != OutputSoftmax {
		return nil, fmt.Errorf("%w: unknown output kind %q", ErrInvalidArchitecture, output)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(42)) //nolint:gosec // deterministic seed for reproducible init
	}

	n := &Network{
		sizes:   append([]int(nil), sizes...),
		weights: make([]*mat.Dense, len(sizes)-1),
		biases:  make([][]float64, len(sizes)-1),
		output:  output,
	}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		scale := math.Sqrt(2.0 / float64(in))
		data := make([]float64, in*out)
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		n.weights[l] = mat.NewDense(in, out, data)
		n.biases[l] = make([]float64, out)
	}
	return n, nil
}

// InputDim returns the expected feature count.
func (n *Network) InputDim() int { return n.sizes[0] }

// OutputDim returns the size of the final layer.
func (n *Network) OutputDim() int { return n.sizes[len(n.sizes)-1] }

// Forward runs a batch (rows = samples) through the network.
func (n *Network) Forward(x *mat.Dense) (*mat.Dense, error) {
	if _, c := x.Dims(); c != n.sizes[0] {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, c, n.sizes[0])
	}
	_, acts := n.forwardCached(x)
	return acts[len(acts)-1], nil
}

// forwardCached returns pre-activations and activations per layer.
// acts[0] is the input; acts[l+1] is the output of layer l.
func (n *Network) forwardCached(x *mat.Dense) (pre, acts []*mat.Dense) {
	acts = make([]*mat.Dense, len(n.weights)+1)
	pre = make([]*mat.Dense, len(n.weights))
	acts[0] = x

	for l, w := range n.weights {
		var z mat.Dense
		z.Mul(acts[l], w)
		addBiasRows(&z, n.biases[l])
		pre[l] = mat.DenseCopyOf(&z)

		if l == len(n.weights)-1 {
			acts[l+1] = n.applyOutput(&z)
			continue
		}
		z.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, &z)
		acts[l+1] = mat.DenseCopyOf(&z)
	}
	return pre, acts
}

func (n *Network) applyOutput(z *mat.Dense) *mat.Dense {
	rows, cols := z.Dims()
	out := mat.NewDense(rows, cols, nil)
	switch n.output {
	case OutputSigmoid:
		out.Apply(func(_, _ int, v float64) float64 {
			return 1.0 / (1.0 + math.Exp(-v))
		}, z)
	case OutputSoftmax:
		for r := 0; r < rows; r++ {
			row := mat.Row(nil, r, z)
			maxV := row[0]
			for _, v := range row {
				if v > maxV {
					maxV = v
				}
			}
			var sum float64
			for i, v := range row {
				row[i] = math.Exp(v - maxV)
				sum += row[i]
			}
			for i := range row {
				out.Set(r, i, row[i]/sum)
			}
		}
	}
	return out
}

// Train fits the network with mini-batch SGD. Targets y must be one value
// per output unit (one-hot rows for softmax, a single column for sigmoid).
// The last-layer gradient is pred - target for both heads, which is the
// cross-entropy pairing.
func (n *Network) Train(x, y *mat.Dense, cfg TrainConfig) error {
	cfg = cfg.withDefaults()

	samples, features := x.Dims()
	if features != n.sizes[0] {
		return fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, features, n.sizes[0])
	}
	yRows, yCols := y.Dims()
	if yRows != samples || yCols != n.OutputDim() {
		return fmt.Errorf("%w: targets are %dx%d, want %dx%d", ErrDimensionMismatch, yRows, yCols, samples, n.OutputDim())
	}

	order := make([]int, samples)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		cfg.Rng.Shuffle(samples, func(i, j int) { order[i], order[j] = order[j], order[i] })

		for start := 0; start < samples; start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > samples {
				end = samples
			}
			bx, by := gatherRows(x, y, order[start:end])
			n.step(bx, by, cfg.LearningRate)
		}
	}
	return nil
}

// step performs one SGD update on a mini-batch.
func (n *Network) step(x, y *mat.Dense, lr float64) {
	pre, acts := n.forwardCached(x)
	batch, _ := x.Dims()
	inv := 1.0 / float64(batch)

	// delta at the output layer: pred - target.
	var delta mat.Dense
	delta.Sub(acts[len(acts)-1], y)

	for l := len(n.weights) - 1; l >= 0; l-- {
		var gradW mat.Dense
		gradW.Mul(acts[l].T(), &delta)
		gradW.Scale(inv*lr, &gradW)

		// Bias gradient: column means of delta.
		dRows, dCols := delta.Dims()
		gradB := make([]float64, dCols)
		for r := 0; r < dRows; r++ {
			for c := 0; c < dCols; c++ {
				gradB[c] += delta.At(r, c)
			}
		}

		// Propagate before mutating this layer's weights.
		if l > 0 {
			var next mat.Dense
			next.Mul(&delta, n.weights[l].T())
			// Gate by ReLU derivative on the previous pre-activation.
			next.Apply(func(r, c int, v float64) float64 {
				if pre[l-1].At(r, c) > 0 {
					return v
				}
				return 0
			}, &next)
			delta = next
		}

		n.weights[l].Sub(n.weights[l], &gradW)
		for c := range n.biases[l] {
			n.biases[l][c] -= lr * inv * gradB[c]
		}
	}
}

// addBiasRows adds the bias vector to every row of z in place.
func addBiasRows(z *mat.Dense, bias []float64) {
	rows, cols := z.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			z.Set(r, c, z.At(r, c)+bias[c])
		}
	}
}

// gatherRows copies the selected rows of x and y into fresh matrices.
func gatherRows(x, y *mat.Dense, idx []int) (*mat.Dense, *mat.Dense) {
	_, xc := x.Dims()
	_, yc := y.Dims()
	bx := mat.NewDense(len(idx), xc, nil)
	by := mat.NewDense(len(idx), yc, nil)
	for i, r := range idx {
		bx.SetRow(i, mat.Row(nil, r, x))
		by.SetRow(i, mat.Row(nil, r, y))
	}
	return bx, by
}

// rowFromFloat32 widens a float32 vector into a float64 slice.
func rowFromFloat32(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
