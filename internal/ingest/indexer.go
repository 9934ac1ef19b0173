package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/embedding"
	"github.com/agentcommand/unisearch/internal/extract"
	"github.com/agentcommand/unisearch/internal/fulltext"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/internal/vector"
)

// Indexer writes a document through every index the retrieval sources read:
// storage, the full-text index, the vector index, and the link graph.
type Indexer struct {
	store     storage.Storage
	embedder  embedding.Embedder
	vectors   vector.Index
	fullText  *fulltext.Index
	chunker   *Chunker
	extractor *extract.Extractor
	logger    *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer. extractor may be nil, in which case files
// are ingested as plain text.
func NewIndexer(
	store storage.Storage,
	embedder embedding.Embedder,
	vectors vector.Index,
	fullText *fulltext.Index,
	cfg config.SearchConfig,
	extractor *extract.Extractor,
	opts ...Option,
) *Indexer {
	idx := &Indexer{
		store:     store,
		embedder:  embedder,
		vectors:   vectors,
		fullText:  fullText,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor: extractor,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexDocument stores the document, embeds its chunks into the vector
// index, adds it to the full-text index, and links it into the relationship
// graph. An empty input ID gets a generated one.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	doc := &models.Document{
		ID:       input.ID,
		Title:    input.Title,
		Path:     input.Path,
		FileType: input.FileType,
		Content:  normalizeContent(input.Content),
		Metadata: input.Metadata,
	}
	if err := idx.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	chunks := idx.chunker.Chunk(doc.ID, doc.Content)
	if len(chunks) == 0 {
		chunks = []*models.DocumentChunk{{
			ID:         doc.ID + "#0",
			DocumentID: doc.ID,
			Content:    doc.Content,
			ChunkIndex: 0,
		}}
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
		chunkIDs[i] = chunks[i].ID
	}
	if err := idx.store.BatchCreateChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	if err := idx.vectors.Add(ctx, chunkIDs, embeddings); err != nil {
		return nil, fmt.Errorf("index vectors: %w", err)
	}

	// The standard analyzer does not split on underscores, so
	// "session_analytics.go" would otherwise only match as one token.
	ftDoc := *doc
	ftDoc.Title = strings.ReplaceAll(doc.Title, "_", " ")
	if err := idx.fullText.Index(ctx, &ftDoc); err != nil {
		return nil, fmt.Errorf("index full text: %w", err)
	}

	if err := idx.linkDocument(ctx, doc); err != nil {
		idx.logger.Warn("link extraction failed",
			zap.String("doc_id", doc.ID), zap.Error(err))
	}
	idx.logger.Debug("document indexed",
		zap.String("doc_id", doc.ID), zap.Int("chunks", len(chunks)))
	return doc, nil
}

const (
	metaSourcePath  = "source_path"
	metaSourceMtime = "source_mtime"
	metaSourceSize  = "source_size"
)

// PathDocID returns a stable document ID for an absolute file path, so
// re-ingesting the same file updates one document.
func PathDocID(absPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(absPath)))
	return "file-" + hex.EncodeToString(sum[:16])
}

// IndexFile ingests the file at path. Unchanged files (same mtime and size
// as the stored document) are skipped. When allowedExts is non-empty the
// extension must be in the list.
func (idx *Indexer) IndexFile(ctx context.Context, path string, allowedExts []string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not allowed", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}
	docID := PathDocID(absPath)
	if idx.isCurrent(ctx, docID, absPath, info) {
		idx.logger.Debug("file unchanged, skipping", zap.String("path", absPath))
		return nil
	}

	text, err := idx.extractContent(absPath)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}
	_ = idx.DeleteDocument(ctx, docID)
	_, err = idx.IndexDocument(ctx, &models.DocumentInput{
		ID:       docID,
		Title:    filepath.Base(absPath),
		Path:     absPath,
		FileType: strings.TrimPrefix(ext, "."),
		Content:  text,
		Metadata: map[string]interface{}{
			metaSourcePath:  absPath,
			metaSourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaSourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	})
	return err
}

// isCurrent reports whether the stored document already reflects the file
// at absPath. Mtime and size are kept as strings; UnixNano does not survive
// a JSON float64 round trip.
func (idx *Indexer) isCurrent(ctx context.Context, docID, absPath string, info os.FileInfo) bool {
	doc, err := idx.store.GetDocument(ctx, docID)
	if err != nil || doc.Metadata == nil {
		return false
	}
	if doc.Metadata[metaSourcePath] != absPath {
		return false
	}
	return metadataInt64(doc.Metadata, metaSourceMtime) == info.ModTime().UnixNano() &&
		metadataInt64(doc.Metadata, metaSourceSize) == info.Size()
}

func metadataInt64(m map[string]interface{}, key string) int64 {
	switch n := m[key].(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// IndexDirectory walks dir recursively and ingests every regular file whose
// extension is allowed. Returns the number of files ingested.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, allowedExts []string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Stat resolves symlinks; only regular files are ingested.
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if indexErr := idx.IndexFile(ctx, path, allowedExts); indexErr != nil {
			return indexErr
		}
		n++
		return nil
	})
	return n, err
}

func (idx *Indexer) extractContent(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	want := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == want {
			return true
		}
	}
	return false
}

// DeleteDocument removes a document from every index and from storage.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	if err := idx.fullText.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete from full-text index: %w", err)
	}
	chunks, err := idx.store.GetChunksByDocumentID(ctx, id)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := idx.vectors.Remove(ctx, chunkIDs); err != nil {
		return fmt.Errorf("delete from vector index: %w", err)
	}
	if err := idx.store.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := idx.store.DeleteLinksFor(ctx, id); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}
	if err := idx.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	idx.logger.Debug("document deleted", zap.String("doc_id", id))
	return nil
}
