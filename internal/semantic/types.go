package semantic

import "context"

type Embedding []float64

// Embedder turns sentences into embeddings, one per sentence and in order.
type Embedder interface {
	Embed(ctx context.Context, sentences []string) ([]Embedding, error)
	ModelName() string
	HealthCheck(ctx context.Context) error
	Close() error
}
