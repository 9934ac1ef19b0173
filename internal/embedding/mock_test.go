package embedding

import (
	"context"
	"math"
	"testing"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

func TestMockEmbedder_DeterministicUnitLength(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "git manager refresh")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "git manager refresh")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("embeddings must be deterministic")
		}
	}

	var norm float64
	for _, v := range a {
		norm += float64(v * v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("embedding should be unit length, norm^2 = %f", norm)
	}
}

func TestMockEmbedder_SharedWordsRaiseSimilarity(t *testing.T) {
	e := NewMockEmbedder(128)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "docker stats polling")
	related, _ := e.Embed(ctx, "the docker stats polling loop")
	unrelated, _ := e.Embed(ctx, "quarterly revenue spreadsheet")

	if cosine(query, related) <= cosine(query, unrelated) {
		t.Errorf("overlapping texts should be more similar: related %f, unrelated %f",
			cosine(query, related), cosine(query, unrelated))
	}
}

func TestMockEmbedder_Batch(t *testing.T) {
	e := NewMockEmbedder(32)
	out, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(out))
	}
	if e.Dimensions() != 32 {
		t.Errorf("dimensions: %d", e.Dimensions())
	}
}
