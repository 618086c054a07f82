package main

import (
	"context"
	"fmt"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/llm"
	"github.com/wgomg/precis/internal/paperless"
	"github.com/wgomg/precis/internal/processor"
	"github.com/wgomg/precis/internal/semantic"
	"github.com/wgomg/precis/internal/utils"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg        *config.Config
	logger     *utils.Logger
	summarizer *processor.Summarizer
	paperless  *paperless.Client
	llm        *llm.Client
	embedder   semantic.Embedder
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("invalid configuration: %w", err))
	}

	logger := utils.NewLogger(cfg.App.LogLevel, cfg.App.RawBodyLog, cfg.App.LogFile)
	a := &app{cfg: cfg, logger: logger}

	var vectorizer processor.Vectorizer
	if cfg.Summary.Vectorizer == "embedding" {
		embedder, err := semantic.NewEmbedder(ctx, logger, &cfg.Semantic)
		if err != nil {
			// TF-IDF keeps the service usable without an embedding backend
			logger.Warn(nil, "Embeddings unavailable, using TF-IDF: %v", err)
		} else {
			a.embedder = embedder
			vectorizer = semantic.NewVectorizer(embedder, utils.NewEmbeddingCache(cfg.Semantic.CacheSize), logger)
			logger.Info(nil, "Using %s embeddings", embedder.ModelName())
		}
	}

	a.summarizer, err = processor.NewSummarizer(vectorizer, &cfg.Summary, logger)
	if err != nil {
		a.Close()
		return nil, withExitCode(ExitConfigError, err)
	}

	if cfg.Paperless.Enabled() {
		if a.paperless, err = paperless.NewClient(cfg, logger); err != nil {
			a.Close()
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	if cfg.Llm.Enabled() {
		if a.llm, err = llm.NewClient(cfg, logger); err != nil {
			a.Close()
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	return a, nil
}

func (a *app) Close() {
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.logger.Error(nil, "Failed to close embedder: %v", err)
		}
	}
	a.logger.Close()
}
