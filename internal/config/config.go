// ABOUTME: Centralized configuration for the recall agent
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// embeddingDimensions maps known embedding model identifiers to their
// vector dimensionality. Collections are segregated by dimension, so an
// unknown model is a hard configuration error rather than a silent default
// that would only surface as a vector-size mismatch at index time.
var embeddingDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds all configuration for the recall agent
type Config struct {
	// Elasticsearch settings
	ElasticURL    string
	ElasticAPIKey string
	IndexPrefix   string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Reranker settings (optional; empty URL disables pruning)
	RerankerURL    string
	RerankerModel  string
	RerankerAPIKey string

	// Session settings
	SessionDBPath string

	// Retrieval tuning
	PruningThreshold    float64
	RankWindow          int
	ConfidenceThreshold float64
	TopK                int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ElasticURL:          os.Getenv("ELASTICSEARCH_URL"),
		ElasticAPIKey:       os.Getenv("ELASTICSEARCH_API_KEY"),
		IndexPrefix:         getEnv("RECALL_INDEX_PREFIX", "recall-memories"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ChatModel:           getEnv("RECALL_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getEnv("RECALL_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		RerankerURL:         os.Getenv("RERANKER_URL"),
		RerankerModel:       getEnv("RERANKER_MODEL", "bge-reranker-v2-m3"),
		RerankerAPIKey:      os.Getenv("RERANKER_API_KEY"),
		SessionDBPath:       getEnv("RECALL_SESSION_DB", "recall-sessions.db"),
		PruningThreshold:    getEnvFloat("RECALL_PRUNING_THRESHOLD", 0.3),
		RankWindow:          getEnvInt("RECALL_RANK_WINDOW", 10),
		ConfidenceThreshold: getEnvFloat("RECALL_CONFIDENCE_THRESHOLD", 0.7),
		TopK:                5,
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if _, ok := embeddingDimensions[c.EmbeddingModel]; !ok {
		return fmt.Errorf("unknown embedding model %q (known: text-embedding-3-small, text-embedding-3-large, text-embedding-ada-002)", c.EmbeddingModel)
	}
	if c.PruningThreshold < 0 || c.PruningThreshold > 1 {
		return fmt.Errorf("RECALL_PRUNING_THRESHOLD must be 0-1, got %f", c.PruningThreshold)
	}
	if c.ConfidenceThreshold < 0 {
		return fmt.Errorf("RECALL_CONFIDENCE_THRESHOLD must not be negative, got %f", c.ConfidenceThreshold)
	}
	if c.TopK < 1 {
		return fmt.Errorf("topK must be at least 1, got %d", c.TopK)
	}
	if c.RankWindow < c.TopK {
		return fmt.Errorf("RECALL_RANK_WINDOW (%d) must be at least topK (%d)", c.RankWindow, c.TopK)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// EmbeddingDimension returns the vector dimensionality of the configured
// embedding model. Validate guarantees the model is known.
func (c *Config) EmbeddingDimension() int {
	return embeddingDimensions[c.EmbeddingModel]
}

// IndexName returns the Elasticsearch index for the configured embedding
// model, so collections with different dimensions never mix.
func (c *Config) IndexName() string {
	return fmt.Sprintf("%s-%d", c.IndexPrefix, c.EmbeddingDimension())
}

// HasElastic reports whether a store endpoint is configured at all.
func (c *Config) HasElastic() bool {
	return c.ElasticURL != "" && c.ElasticAPIKey != ""
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
