package admin

import (
	"context"
	"fmt"

	"github.com/veridex-labs/veridex/internal/config"
	"github.com/veridex-labs/veridex/internal/embedding"
	"github.com/veridex-labs/veridex/internal/service"
	"github.com/veridex-labs/veridex/internal/storage"
)

// buildProvider selects the embedding backend from config.
func buildProvider(cfg *config.Config) (service.EmbeddingProvider, error) {
	switch backend := cfg.EmbeddingBackend(); backend {
	case "openai":
		if !cfg.HasOpenAI() {
			return nil, fmt.Errorf("EMBEDDING_PROVIDER=openai requires OPENAI_API_KEY")
		}
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{APIKey: cfg.OpenAIAPIKey}), nil
	case "hash":
		return embedding.NewHashProvider(embedding.DefaultHashDimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", backend)
	}
}

// storageClient builds the S3 client for snapshot mirroring and makes sure
// the bucket exists.
func storageClient(ctx context.Context, cfg *config.Config) (*storage.S3Client, error) {
	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	return client, nil
}
