package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = string(openai.SmallEmbedding3)

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

// NewOpenAI creates an OpenAI-backed embedder. dimension is requested from
// the API (supported by the v3 embedding models) so local and remote
// providers can be swapped without retraining for a new width.
func NewOpenAI(apiKey, model string, dimension int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrProviderConfig)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", ErrProviderConfig)
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(apiKey),
		model:     openai.EmbeddingModel(model),
		dimension: dimension,
	}, nil
}

// Dimension implements Embedder.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements Embedder.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrProviderResponse, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, data := range resp.Data {
		if len(data.Embedding) != e.dimension {
			return nil, fmt.Errorf("%w: embedding %d has %d dims, want %d", ErrProviderResponse, i, len(data.Embedding), e.dimension)
		}
		out[i] = data.Embedding
	}
	return out, nil
}
