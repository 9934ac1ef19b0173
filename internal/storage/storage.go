// Package storage defines persistence for documents, chunks, links, and agent memories.
package storage

import (
	"context"

	"github.com/agentcommand/unisearch/internal/models"
)

// Storage defines document, chunk, link, and memory persistence operations.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	// FindDocumentsByName returns documents whose title or path contains the
	// given value (case-insensitive). Serves the entityDirect source.
	FindDocumentsByName(ctx context.Context, value string, limit int) ([]*models.Document, error)

	// Chunk operations
	CreateChunk(ctx context.Context, chunk *models.DocumentChunk) error
	GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	DeleteChunksByDocumentID(ctx context.Context, docID string) error
	BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error

	// Link operations (document relationship graph)
	UpsertLink(ctx context.Context, link *models.DocumentLink) error
	GetLinksFrom(ctx context.Context, docIDs []string) ([]*models.DocumentLink, error)
	DeleteLinksFor(ctx context.Context, docID string) error

	// Agent memory operations
	CreateMemory(ctx context.Context, mem *models.MemoryRecord) error
	ListMemories(ctx context.Context, agent string, limit int) ([]*models.MemoryRecord, error)
	// SearchMemories returns memories whose summary or tags match any of the
	// given terms, most recent first. Relevance decay is applied by the caller.
	SearchMemories(ctx context.Context, terms []string, limit int) ([]*models.MemoryRecord, error)
	DeleteMemory(ctx context.Context, id string) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
	CountMemories(ctx context.Context) (int64, error)

	Close() error
}
