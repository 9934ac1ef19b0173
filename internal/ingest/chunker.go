// Package ingest feeds documents into storage and the keyword, vector, and
// relationship indices.
package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agentcommand/unisearch/internal/models"
)

// Chunker splits document text into overlapping word windows for embedding.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into DocumentChunks. Chunk IDs are derived from the
// document ID and window index so re-ingesting a document reproduces the
// same IDs after the old chunks are removed.
func (c *Chunker) Chunk(docID, text string) []*models.DocumentChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.size - c.overlap
	if step <= 0 {
		step = 1
	}
	var chunks []*models.DocumentChunk
	for i, n := 0, 0; i < len(words); i, n = i+step, n+1 {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, &models.DocumentChunk{
			ID:         fmt.Sprintf("%s#%d", docID, n),
			DocumentID: docID,
			Content:    strings.Join(words[i:end], " "),
			ChunkIndex: n,
		})
		if end >= len(words) {
			break
		}
	}
	return chunks
}

// normalizeContent trims and collapses runs of whitespace to single spaces.
func normalizeContent(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := false
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteByte(' ')
				wasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		wasSpace = false
	}
	return b.String()
}
