package semantic

import (
	"context"
	"fmt"

	"github.com/wgomg/precis/internal/processor"
	"github.com/wgomg/precis/internal/utils"
)

// Vectorizer feeds sentence embeddings into the summarizer. Embeddings are
// cached by sentence text across requests.
type Vectorizer struct {
	embedder Embedder
	cache    *utils.EmbeddingCache
	logger   *utils.Logger
}

func NewVectorizer(embedder Embedder, cache *utils.EmbeddingCache, logger *utils.Logger) *Vectorizer {
	return &Vectorizer{embedder: embedder, cache: cache, logger: logger}
}

func (v *Vectorizer) Vectorize(ctx context.Context, sentences []string) (processor.Vectors, error) {
	reqID := utils.RequestID(ctx)

	rows, missing := v.lookup(sentences)

	if len(missing) > 0 {
		embeddings, err := v.embedder.Embed(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("embedding %d sentences with %s: %w", len(missing), v.embedder.ModelName(), err)
		}

		fresh := make(map[string][]float64, len(missing))
		for i, sentence := range missing {
			fresh[sentence] = embeddings[i]
			if v.cache != nil {
				v.cache.Add(sentence, embeddings[i])
			}
		}

		for i, sentence := range sentences {
			if rows[i] == nil {
				rows[i] = fresh[sentence]
			}
		}
	}

	if v.cache != nil {
		v.logger.Debug(reqID, "Embedded %d new sentences, cache size=%d, hit rate=%.2f",
			len(missing), v.cache.Size(), v.cache.HitRate())
	}

	return processor.NewDenseVectors(rows), nil
}

func (v *Vectorizer) lookup(sentences []string) ([][]float64, []string) {
	if v.cache != nil {
		return v.cache.Lookup(sentences)
	}

	seen := make(map[string]struct{}, len(sentences))
	var missing []string
	for _, s := range sentences {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			missing = append(missing, s)
		}
	}
	return make([][]float64, len(sentences)), missing
}
