package neural

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// networkState is the gob wire form of a Network.
type networkState struct {
	Sizes   []int
	Output  string
	Weights [][]float64 // row-major, one slice per layer
	Biases  [][]float64
}

func saveNetwork(path string, n *Network) error {
	st := networkState{
		Sizes:   n.sizes,
		Output:  string(n.output),
		Weights: make([][]float64, len(n.weights)),
		Biases:  make([][]float64, len(n.biases)),
	}
	for l, w := range n.weights {
		rows, cols := w.Dims()
		data := make([]float64, 0, rows*cols)
		for r := 0; r < rows; r++ {
			data = append(data, mat.Row(nil, r, w)...)
		}
		st.Weights[l] = data
		st.Biases[l] = append([]float64(nil), n.biases[l]...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(st); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

func loadNetwork(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadModel, err)
	}
	defer f.Close()

	var st networkState
	if err := gob.NewDecoder(f).Decode(&st); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLoadModel, path, err)
	}
	if len(st.Sizes) < 2 || len(st.Weights) != len(st.Sizes)-1 || len(st.Biases) != len(st.Sizes)-1 {
		return nil, fmt.Errorf("%w: inconsistent layer shape in %s", ErrLoadModel, path)
	}

	n := &Network{
		sizes:   st.Sizes,
		weights: make([]*mat.Dense, len(st.Weights)),
		biases:  make([][]float64, len(st.Biases)),
		output:  OutputKind(st.Output),
	}
	for l := range st.Weights {
		in, out := st.Sizes[l], st.Sizes[l+1]
		if len(st.Weights[l]) != in*out || len(st.Biases[l]) != out {
			return nil, fmt.Errorf("%w: layer %d shape mismatch in %s", ErrLoadModel, l, path)
		}
		n.weights[l] = mat.NewDense(in, out, st.Weights[l])
		n.biases[l] = st.Biases[l]
	}
	return n, nil
}
