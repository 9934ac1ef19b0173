// Package embedding produces vector embeddings for query and chunk text,
// via ONNX Runtime when available, with an LRU cache in front.
package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/config"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New returns an Embedder for the given configuration. It tries the ONNX
// model first; when the runtime or model is unavailable (no CGO, missing
// shared library, missing model file) it falls back to the deterministic
// mock so search stays functional without semantic quality.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) Embedder {
	emb, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	if err != nil {
		logger.Warn("onnx embedder unavailable, using mock embeddings",
			zap.String("model_path", cfg.ModelPath),
			zap.Error(err))
		return NewMockEmbedder(cfg.Dimensions)
	}
	logger.Info("onnx embedder initialized",
		zap.String("model_path", cfg.ModelPath),
		zap.Int("dimensions", cfg.Dimensions))
	return emb
}
