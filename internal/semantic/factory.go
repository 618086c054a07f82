package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
)

// NewEmbedder starts the configured embedding provider and checks that it
// answers.
func NewEmbedder(ctx context.Context, logger *utils.Logger, cfg *config.SemanticConfig) (Embedder, error) {
	var embedder Embedder

	switch cfg.Provider {
	case "ollama":
		logger.Info(nil, "Using Ollama embeddings at %s (model %s)", cfg.Ollama.URL, cfg.Ollama.Model)
		embedder = NewOllamaProvider(
			WithBaseURL(cfg.Ollama.URL),
			WithModel(cfg.Ollama.Model),
			WithTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond),
		)
	case "python":
		pool := NewPythonWorkerPool(logger, cfg)
		if err := pool.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize python embedding pool: %w", err)
		}
		embedder = pool
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if err := embedder.HealthCheck(ctx); err != nil {
		embedder.Close()
		return nil, fmt.Errorf("embedding provider %s is not healthy: %w", cfg.Provider, err)
	}

	return embedder, nil
}
