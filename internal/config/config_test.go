package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Server.MaxUploadMB)
	assert.Equal(t, "medium", cfg.Summary.DefaultLength)
	assert.Equal(t, "structured", cfg.Summary.DefaultTone)
	assert.Equal(t, "tfidf", cfg.Summary.Vectorizer)
	assert.Equal(t, 0.85, cfg.Summary.Damping)
	assert.True(t, cfg.Summary.Stem)
	assert.False(t, cfg.Summary.ForceGoals)
	assert.GreaterOrEqual(t, cfg.Semantic.WorkerCount, 1)
	assert.LessOrEqual(t, cfg.Semantic.WorkerCount, 4)
	assert.False(t, cfg.Llm.Enabled())
	assert.False(t, cfg.Paperless.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUMMARY_DEFAULT_LENGTH", "short")
	t.Setenv("SUMMARY_FORCE_GOALS", "yes")
	t.Setenv("SUMMARY_STEM", "0")
	t.Setenv("SUMMARY_SIMILARITY_THRESHOLD", "0.02")
	t.Setenv("SUMMARY_MAX_ITERATIONS", "not-a-number")
	t.Setenv("LLM_URL", "http://llm.local/v1/chat/completions")
	t.Setenv("LLM_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "short", cfg.Summary.DefaultLength)
	assert.True(t, cfg.Summary.ForceGoals)
	assert.False(t, cfg.Summary.Stem)
	assert.Equal(t, 0.02, cfg.Summary.SimilarityThreshold)
	assert.Equal(t, 100, cfg.Summary.MaxIterations)
	assert.True(t, cfg.Llm.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUMMARY_VECTORIZER", "word2vec")

	_, err := Load()
	assert.ErrorContains(t, err, "SUMMARY_VECTORIZER")
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{MaxUploadMB: 25},
		Summary: SummaryConfig{
			DefaultLength: "medium",
			DefaultTone:   "structured",
			Vectorizer:    "tfidf",
			MaxNgram:      2,
			MaxDF:         0.85,
			Damping:       0.85,
			MaxIterations: 100,
		},
		Semantic: SemanticConfig{Provider: "python"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "length", mutate: func(c *Config) { c.Summary.DefaultLength = "epic" }, wantErr: "SUMMARY_DEFAULT_LENGTH"},
		{name: "tone", mutate: func(c *Config) { c.Summary.DefaultTone = "casual" }, wantErr: "SUMMARY_DEFAULT_TONE"},
		{name: "provider", mutate: func(c *Config) { c.Semantic.Provider = "cloud" }, wantErr: "SEMANTIC_PROVIDER"},
		{name: "threshold", mutate: func(c *Config) { c.Summary.SimilarityThreshold = 0.3 }, wantErr: "SUMMARY_SIMILARITY_THRESHOLD"},
		{name: "ngram", mutate: func(c *Config) { c.Summary.MaxNgram = 5 }, wantErr: "SUMMARY_MAX_NGRAM"},
		{name: "max df", mutate: func(c *Config) { c.Summary.MaxDF = 0 }, wantErr: "SUMMARY_MAX_DF"},
		{name: "damping", mutate: func(c *Config) { c.Summary.Damping = 1 }, wantErr: "SUMMARY_DAMPING"},
		{name: "iterations", mutate: func(c *Config) { c.Summary.MaxIterations = 0 }, wantErr: "SUMMARY_MAX_ITERATIONS"},
		{name: "llm pair", mutate: func(c *Config) { c.Llm.URL = "http://llm" }, wantErr: "LLM_URL and LLM_TOKEN"},
		{name: "paperless pair", mutate: func(c *Config) { c.Paperless.Token = "t" }, wantErr: "PAPERLESS_URL and PAPERLESS_TOKEN"},
		{name: "upload size", mutate: func(c *Config) { c.Server.MaxUploadMB = 0 }, wantErr: "SERVER_MAX_UPLOAD_MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
