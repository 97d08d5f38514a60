package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LocalEmbedder is a deterministic feature-hashing embedder. Each token is
// hashed into one of Dimension() buckets with a hash-derived sign, and the
// resulting vector is L2-normalized. It needs no network or model files,
// which makes it the default for development and tests; the trained models
// only ever see vectors from a single embedder instance, so the pipeline
// semantics are identical to a remote provider.
type LocalEmbedder struct {
	dimension int
}

// NewLocal creates a local embedder with the given output dimension.
func NewLocal(dimension int) (*LocalEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", ErrProviderConfig)
	}
	return &LocalEmbedder{dimension: dimension}, nil
}

// Dimension implements Embedder.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Embed implements Embedder.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, e.dimension)
	for _, tok := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dimension)) //nolint:gosec // bucket index, not crypto
		sign := 1.0
		if (sum>>63)&1 == 1 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, e.dimension)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch implements Embedder.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// tokenize splits on any non-alphanumeric rune, lowercased.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
