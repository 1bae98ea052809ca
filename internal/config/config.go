package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DATABASE_URL is optional; without it document records live in memory
	// and the pgvector chunk mirror is disabled.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"veridex-index"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"snapshots"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Embedding provider: "openai" or "hash". Defaults to openai when an
	// API key is present, hash otherwise.
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER"`

	IndexDir            string `envconfig:"INDEX_DIR" default:"data/index"`
	ChunkMaxChars       int    `envconfig:"CHUNK_MAX_CHARS" default:"1000"`
	ChunkOverlap        int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	OverfetchMultiplier int    `envconfig:"OVERFETCH_MULTIPLIER" default:"3"`
	MaxUploadBytes      int64  `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`

	OCREnabled       bool `envconfig:"OCR_ENABLED" default:"true"`
	SnapshotInterval int  `envconfig:"SNAPSHOT_INTERVAL_SECONDS" default:"30"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("VERIDEX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOCR() bool {
	return c.OCREnabled
}

// EmbeddingBackend resolves the provider name, defaulting to openai when a
// key is configured and the deterministic hash provider otherwise.
func (c *Config) EmbeddingBackend() string {
	if c.EmbeddingProvider != "" {
		return c.EmbeddingProvider
	}
	if c.HasOpenAI() {
		return "openai"
	}
	return "hash"
}
