// Package models defines core data structures for knowledge documents,
// queries, agent memories, and search results.
package models

import "time"

// Document represents an indexed knowledge document (source file, doc page, note).
type Document struct {
	ID        string                 `json:"id" db:"id"`
	Title     string                 `json:"title" db:"title"`
	Path      string                 `json:"path,omitempty" db:"path"`
	FileType  string                 `json:"file_type,omitempty" db:"file_type"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// DocumentChunk is a slice of a document used for semantic indexing.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DocumentInput is the input for creating or updating a document.
type DocumentInput struct {
	ID       string                 `json:"id,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Path     string                 `json:"path,omitempty"`
	FileType string                 `json:"file_type,omitempty"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentLink is a weighted relationship between two documents
// (import, reference, shared module). Used by the relationship source.
type DocumentLink struct {
	SourceID string  `json:"source_id" db:"source_id"`
	TargetID string  `json:"target_id" db:"target_id"`
	Kind     string  `json:"kind" db:"kind"`
	Weight   float64 `json:"weight" db:"weight"`
}

// MemoryRecord is a stored agent memory: something an agent learned or decided
// during a session, recalled by the agentMemory source.
type MemoryRecord struct {
	ID        string    `json:"id" db:"id"`
	Agent     string    `json:"agent" db:"agent"`
	Summary   string    `json:"summary" db:"summary"`
	Tags      []string  `json:"tags,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// Relevance is the decayed relevance computed at query time, not stored.
	Relevance float64 `json:"relevance,omitempty" db:"-"`
}
