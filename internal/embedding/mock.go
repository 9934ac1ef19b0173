package embedding

import (
	"context"
	"strings"

	"github.com/agentcommand/unisearch/pkg/utils"
)

// MockEmbedder is a deterministic bag-of-words embedder used in tests and as
// the fallback when ONNX is unavailable. Each word hashes into a handful of
// vector buckets, so texts sharing words get positive cosine similarity while
// unrelated texts stay near orthogonal.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a mock embedder of the given dimension.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length embedding derived from the text's words.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	emb := make([]float32, e.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := hashToken(word)
		// Spread each word over three buckets with alternating sign.
		for k := 1; k <= 3; k++ {
			idx := (h * k) % e.dimensions
			sign := float32(1)
			if (h*k/e.dimensions)%2 == 1 {
				sign = -1
			}
			emb[idx] += sign
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch embeds each text in order.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}
