package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	ServiceAPIKey string

	// OpenAI inference
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string

	// Data layout
	DataDir      string
	TemplatePath string
	PhasesPath   string

	// Digest pre-pass
	DigestChunkTokens int
	DigestMaxTokens   int
	DigestTemperature float64
	DigestConcurrency int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		ServiceAPIKey: os.Getenv("FINREPORT_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:         envOr("OPENAI_TEXT_MODEL", "gpt-4-turbo"),

		DataDir:      envOr("DATA_DIR", "company_data"),
		TemplatePath: os.Getenv("TEMPLATE_PATH"),
		PhasesPath:   os.Getenv("PHASES_PATH"),

		DigestChunkTokens: envInt("DIGEST_CHUNK_TOKENS", 7000),
		DigestMaxTokens:   envInt("DIGEST_MAX_TOKENS", 1500),
		DigestTemperature: envFloat("DIGEST_TEMPERATURE", 0.2),
		DigestConcurrency: envInt("DIGEST_CONCURRENCY", 3),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 2*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.DigestChunkTokens <= 0 {
		cfg.DigestChunkTokens = 7000
	}
	if cfg.DigestMaxTokens <= 0 {
		cfg.DigestMaxTokens = 1500
	}
	if cfg.DigestTemperature < 0 || cfg.DigestTemperature > 2 {
		cfg.DigestTemperature = 0.2
	}
	if cfg.DigestConcurrency <= 0 {
		cfg.DigestConcurrency = 3
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 2 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("FINREPORT_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
