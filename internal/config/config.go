package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

type AppConfig struct {
	Env                Environment
	LogLevel           string
	LogFile            string
	RawBodyLog         bool
	HttpTimeoutSeconds int
}

type ServerConfig struct {
	Port              string
	MaxUploadMB       int
	RateLimitPerSec   float64
	RateLimitBurst    int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	ShutdownTimeoutMs int
}

type SummaryConfig struct {
	DefaultLength       string
	DefaultTone         string
	Vectorizer          string
	SimilarityThreshold float64
	MaxNgram            int
	MaxDF               float64
	Stem                bool
	MinSentenceChars    int
	MinSentenceWords    int
	Damping             float64
	MaxIterations       int
	Tolerance           float64
	PositionWeight      float64
	EndWeight           float64
	SectionWeight       float64
	ForceGoals          bool
	TaxonomyFile        string
}

type PythonConfig struct {
	ConfigDir              string
	ProcessShutdownTimeout int
}

type OllamaConfig struct {
	URL   string
	Model string
}

type SemanticConfig struct {
	Provider    string
	TimeoutMs   int
	Model       string
	WorkerCount int
	BatchSize   int
	CacheSize   int
	Python      PythonConfig
	Ollama      OllamaConfig
}

type LlmConfig struct {
	URL              string
	Token            string
	Model            string
	Temperature      float64
	MaxTokens        int
	ContextTokens    int
	FrequencyPenalty float64
	PresencePenalty  float64
	RequestsPerMin   int
}

type PaperlessConfig struct {
	URL   string
	Token string
}

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Summary   SummaryConfig
	Semantic  SemanticConfig
	Llm       LlmConfig
	Paperless PaperlessConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", "development")
	env := parseEnvironment(appEnv)

	logLevel := getLogLevel(env)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	defaultPythonDir := filepath.Join(homeDir, ".config", "precis")

	defaultWorkerCount := calculateDefaultWorkerCount()

	cfg := &Config{
		App: AppConfig{
			Env:                env,
			LogLevel:           logLevel,
			LogFile:            getEnv("APP_LOG_FILE", ""),
			RawBodyLog:         getEnvBool("APP_RAW_BODY_LOG", false),
			HttpTimeoutSeconds: getEnvInt("APP_HTTP_TIMEOUT_SECONDS", 30),
		},
		Server: ServerConfig{
			Port:              getEnv("SERVER_PORT", "8080"),
			MaxUploadMB:       getEnvInt("SERVER_MAX_UPLOAD_MB", 25),
			RateLimitPerSec:   getEnvFloat("SERVER_RATE_LIMIT_PER_SEC", 5),
			RateLimitBurst:    getEnvInt("SERVER_RATE_LIMIT_BURST", 10),
			ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT_SECONDS", 60),
			WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 120),
			ShutdownTimeoutMs: getEnvInt("SERVER_SHUTDOWN_TIMEOUT_MS", 10000),
		},
		Summary: SummaryConfig{
			DefaultLength:       getEnv("SUMMARY_DEFAULT_LENGTH", "medium"),
			DefaultTone:         getEnv("SUMMARY_DEFAULT_TONE", "structured"),
			Vectorizer:          getEnv("SUMMARY_VECTORIZER", "tfidf"),
			SimilarityThreshold: getEnvFloat("SUMMARY_SIMILARITY_THRESHOLD", 0),
			MaxNgram:            getEnvInt("SUMMARY_MAX_NGRAM", 2),
			MaxDF:               getEnvFloat("SUMMARY_MAX_DF", 0.85),
			Stem:                getEnvBool("SUMMARY_STEM", true),
			MinSentenceChars:    getEnvInt("SUMMARY_MIN_SENTENCE_CHARS", 20),
			MinSentenceWords:    getEnvInt("SUMMARY_MIN_SENTENCE_WORDS", 3),
			Damping:             getEnvFloat("SUMMARY_DAMPING", 0.85),
			MaxIterations:       getEnvInt("SUMMARY_MAX_ITERATIONS", 100),
			Tolerance:           getEnvFloat("SUMMARY_TOLERANCE", 1e-6),
			PositionWeight:      getEnvFloat("SUMMARY_POSITION_WEIGHT", 0.2),
			EndWeight:           getEnvFloat("SUMMARY_END_WEIGHT", 0.05),
			SectionWeight:       getEnvFloat("SUMMARY_SECTION_WEIGHT", 0.1),
			ForceGoals:          getEnvBool("SUMMARY_FORCE_GOALS", false),
			TaxonomyFile:        getEnv("SUMMARY_TAXONOMY_FILE", ""),
		},
		Semantic: SemanticConfig{
			Provider:    getEnv("SEMANTIC_PROVIDER", "python"),
			TimeoutMs:   getEnvInt("SEMANTIC_TIMEOUT_MS", 30000),
			Model:       getEnv("SEMANTIC_MODEL_NAME", "all-MiniLM-L6-v2"),
			WorkerCount: getEnvInt("SEMANTIC_WORKER_COUNT", defaultWorkerCount),
			BatchSize:   getEnvInt("SEMANTIC_BATCH_SIZE", 64),
			CacheSize:   getEnvInt("SEMANTIC_CACHE_SIZE", 10000),
			Python: PythonConfig{
				ConfigDir:              getEnv("SEMANTIC_PYTHON_CONFIG_DIR", defaultPythonDir),
				ProcessShutdownTimeout: getEnvInt("SEMANTIC_PYTHON_PROCESS_SHUTDOWN_TIMEOUT", 5),
			},
			Ollama: OllamaConfig{
				URL:   getEnv("SEMANTIC_OLLAMA_URL", "http://localhost:11434"),
				Model: getEnv("SEMANTIC_OLLAMA_MODEL", "nomic-embed-text"),
			},
		},
		Llm: LlmConfig{
			URL:              getEnv("LLM_URL", ""),
			Token:            getEnv("LLM_TOKEN", ""),
			Model:            getEnv("LLM_MODEL", ""),
			Temperature:      getEnvFloat("LLM_TEMPERATURE", 0.3),
			MaxTokens:        getEnvInt("LLM_MAX_TOKENS", 1000),
			ContextTokens:    getEnvInt("LLM_CONTEXT_TOKENS", 6000),
			FrequencyPenalty: getEnvFloat("LLM_FREQUENCY_PENALTY", 0.0),
			PresencePenalty:  getEnvFloat("LLM_PRESENCE_PENALTY", 0.0),
			RequestsPerMin:   getEnvInt("LLM_REQUESTS_PER_MINUTE", 30),
		},
		Paperless: PaperlessConfig{
			URL:   getEnv("PAPERLESS_URL", ""),
			Token: getEnv("PAPERLESS_TOKEN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enums and ranges. Remote collaborators are optional, so
// their settings are only checked for consistency.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Summary.DefaultLength) {
	case "short", "medium", "long":
	default:
		return fmt.Errorf("SUMMARY_DEFAULT_LENGTH must be short, medium or long, got %q", c.Summary.DefaultLength)
	}

	switch strings.ToLower(c.Summary.DefaultTone) {
	case "structured", "simple":
	default:
		return fmt.Errorf("SUMMARY_DEFAULT_TONE must be structured or simple, got %q", c.Summary.DefaultTone)
	}

	switch c.Summary.Vectorizer {
	case "tfidf", "embedding":
	default:
		return fmt.Errorf("SUMMARY_VECTORIZER must be tfidf or embedding, got %q", c.Summary.Vectorizer)
	}

	switch c.Semantic.Provider {
	case "python", "ollama":
	default:
		return fmt.Errorf("SEMANTIC_PROVIDER must be python or ollama, got %q", c.Semantic.Provider)
	}

	if c.Summary.SimilarityThreshold < 0 || c.Summary.SimilarityThreshold > 0.05 {
		return fmt.Errorf("SUMMARY_SIMILARITY_THRESHOLD must be within [0, 0.05]")
	}
	if c.Summary.MaxNgram < 1 || c.Summary.MaxNgram > 3 {
		return fmt.Errorf("SUMMARY_MAX_NGRAM must be 1, 2 or 3")
	}
	if c.Summary.MaxDF <= 0 || c.Summary.MaxDF > 1 {
		return fmt.Errorf("SUMMARY_MAX_DF must be within (0, 1]")
	}
	if c.Summary.Damping <= 0 || c.Summary.Damping >= 1 {
		return fmt.Errorf("SUMMARY_DAMPING must be within (0, 1)")
	}
	if c.Summary.MaxIterations < 1 {
		return fmt.Errorf("SUMMARY_MAX_ITERATIONS must be positive")
	}

	if (c.Llm.URL == "") != (c.Llm.Token == "") {
		return fmt.Errorf("LLM_URL and LLM_TOKEN must be set together")
	}
	if (c.Paperless.URL == "") != (c.Paperless.Token == "") {
		return fmt.Errorf("PAPERLESS_URL and PAPERLESS_TOKEN must be set together")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("SERVER_MAX_UPLOAD_MB must be positive")
	}

	return nil
}

func (c *LlmConfig) Enabled() bool {
	return c.URL != "" && c.Token != ""
}

func (c *PaperlessConfig) Enabled() bool {
	return c.URL != "" && c.Token != ""
}

func parseEnvironment(envStr string) Environment {
	env := Environment(strings.ToLower(envStr))

	switch env {
	case Development, Production:
		return env
	default:
		return Development
	}
}

func calculateDefaultWorkerCount() int {
	cpuCores := runtime.NumCPU()

	// all-MiniLM-L6-v2 needs about 90MB, multilingual models up to 420MB
	modelMemoryMB := 200

	var availableMemoryMB int64 = 4096

	if memInfo, err := os.ReadFile("/proc/meminfo"); err == nil {
		for line := range strings.SplitSeq(string(memInfo), "\n") {
			if !strings.HasPrefix(line, "MemTotal:") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if kb, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
					availableMemoryMB = kb / 1024
				}
			}
			break
		}
	}

	workersByCPU := min(cpuCores, 4)

	// leave 2GB for the system and the Go process
	usableMemoryMB := int(availableMemoryMB) - 2048
	if usableMemoryMB < 0 {
		usableMemoryMB = 2048
	}

	workersByMemory := max(min(usableMemoryMB/modelMemoryMB, 4), 1)

	return min(max(min(workersByMemory, workersByCPU), 1), 4)
}

func getLogLevel(env Environment) string {
	if env == Production {
		return getEnv("APP_LOG_LEVEL", "info")
	}

	return getEnv("APP_LOG_LEVEL", "debug")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
