package ingest

import (
	"strings"
	"testing"
)

func TestChunker_SmallTextSingleChunk(t *testing.T) {
	c := NewChunker(10, 2)
	chunks := c.Chunk("doc1", "just a few words here")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "just a few words here" {
		t.Errorf("got %q", chunks[0].Content)
	}
	if chunks[0].ID != "doc1#0" || chunks[0].ChunkIndex != 0 {
		t.Errorf("chunk identity: %+v", chunks[0])
	}
}

func TestChunker_OverlappingWindows(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	c := NewChunker(10, 2)
	chunks := c.Chunk("d", strings.Join(words, " "))
	// Step is 8 words: windows start at 0, 8, 16, 24.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.ChunkIndex)
		}
		if ch.DocumentID != "d" {
			t.Errorf("chunk %d document id %q", i, ch.DocumentID)
		}
	}
	if got := len(strings.Fields(chunks[3].Content)); got != 1 {
		t.Errorf("tail chunk should hold the remaining word, got %d", got)
	}
}

func TestChunker_DeterministicIDs(t *testing.T) {
	c := NewChunker(5, 1)
	text := "one two three four five six seven eight"
	a := c.Chunk("doc", text)
	b := c.Chunk("doc", text)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("chunk %d ids differ: %q vs %q", i, a[i].ID, b[i].ID)
		}
	}
}

func TestChunker_Empty(t *testing.T) {
	c := NewChunker(10, 2)
	if chunks := c.Chunk("doc", "   \n\t "); chunks != nil {
		t.Errorf("whitespace-only text should yield no chunks, got %v", chunks)
	}
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  a  b\n\nc\t", "a b c"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeContent(tt.in); got != tt.want {
			t.Errorf("normalizeContent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
