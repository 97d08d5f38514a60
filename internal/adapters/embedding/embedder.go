// Package embedding turns text into fixed-dimension vectors.
package embedding

import "context"

// Embedder generates vector embeddings from text. Implementations must be
// order-preserving in EmbedBatch and always emit Dimension()-length
// vectors: the catalog and every resume must go through the same instance
// so the dimensions line up.
type Embedder interface {
	// Embed generates an embedding for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple text strings,
	// one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}
