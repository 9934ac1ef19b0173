// Package vector provides the chunk vector index used by semantic expansion.
package vector

import "context"

// Index defines vector storage and similarity search over chunk embeddings.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single vector search hit; ID is the chunk ID.
type Result struct {
	ID string
	// Score is the inner product with the query; for unit vectors this is
	// cosine similarity.
	Score float64
}
