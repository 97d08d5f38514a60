package embedding

import (
	"context"
	"fmt"
	"sync"
)

// Default chunking for catalog-scale embedding jobs.
const (
	defaultBatchSize = 64
	defaultWorkers   = 4
)

// EmbedAll embeds a large text set by splitting it into batches and
// running up to workers batches concurrently. Output order matches input
// order. Used when embedding the whole catalog at startup.
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize, workers int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if len(texts) == 0 {
		return nil, nil
	}

	type chunk struct {
		start int
		texts []string
	}
	chunks := make(chan chunk)
	out := make([][]float32, len(texts))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunks {
				vecs, err := e.EmbedBatch(ctx, c.texts)
				if err != nil {
					errCh <- fmt.Errorf("embed batch at %d: %w", c.start, err)
					cancel()
					return
				}
				if len(vecs) != len(c.texts) {
					errCh <- fmt.Errorf("%w: got %d embeddings for %d inputs", ErrProviderResponse, len(vecs), len(c.texts))
					cancel()
					return
				}
				copy(out[c.start:], vecs)
			}
		}()
	}

feed:
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case chunks <- chunk{start: start, texts: texts[start:end]}:
		case <-ctx.Done():
			break feed
		}
	}
	close(chunks)
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("embedding canceled: %w", err)
	}
	return out, nil
}
