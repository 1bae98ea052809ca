package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1000, cfg.ChunkMaxChars)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.OverfetchMultiplier)
	assert.False(t, cfg.HasS3())
}

func TestEmbeddingBackend(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"explicit provider wins", Config{EmbeddingProvider: "hash", OpenAIAPIKey: "sk-x"}, "hash"},
		{"openai when key present", Config{OpenAIAPIKey: "sk-x"}, "openai"},
		{"hash when nothing configured", Config{}, "hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.EmbeddingBackend())
		})
	}
}

func TestHasDatabase(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.HasDatabase())
	cfg.DatabaseURL = "postgres://localhost/veridex"
	assert.True(t, cfg.HasDatabase())
}
