package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentcommand/unisearch/internal/embedding"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/internal/vector"
	"github.com/agentcommand/unisearch/pkg/utils"
)

// SemanticSource retrieves documents by embedding similarity over chunks,
// expanding the query beyond its literal terms.
type SemanticSource struct {
	embedder embedding.Embedder
	index    vector.Index
	storage  storage.Storage
	topK     int
}

// NewSemanticSource creates the semantic-expansion source.
func NewSemanticSource(embedder embedding.Embedder, index vector.Index, store storage.Storage, topK int) *SemanticSource {
	return &SemanticSource{embedder: embedder, index: index, storage: store, topK: topK}
}

func (s *SemanticSource) Name() models.ResultSource {
	return models.SourceSemanticExpansion
}

func (s *SemanticSource) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error) {
	text := query.OriginalQuery
	if len(query.SemanticKeywords) > 0 {
		text = strings.Join(query.SemanticKeywords, " ")
	}
	queryEmbedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	hits, err := s.index.Search(ctx, queryEmbedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	// Best chunk wins per document.
	results := make([]*models.SemanticSearchResult, 0, len(hits))
	bestByDoc := make(map[string]*models.SemanticSearchResult)
	for _, hit := range hits {
		chunk, err := s.storage.GetChunk(ctx, hit.ID)
		if err != nil {
			continue
		}
		similarity := hit.Score
		if similarity < 0 {
			similarity = 0
		}
		if similarity > 1 {
			similarity = 1
		}
		if existing, ok := bestByDoc[chunk.DocumentID]; ok {
			if similarity > existing.SemanticRelevance {
				existing.SemanticRelevance = similarity
				existing.RAGResult.Snippet = utils.Truncate(chunk.Content, snippetLength)
			}
			continue
		}
		doc, err := s.storage.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			continue
		}
		cand := &models.SemanticSearchResult{
			ID:                "doc:" + doc.ID,
			Source:            models.SourceSemanticExpansion,
			RAGResult:         &models.RAGResult{Document: doc, Snippet: utils.Truncate(chunk.Content, snippetLength)},
			SemanticRelevance: similarity,
		}
		bestByDoc[chunk.DocumentID] = cand
		results = append(results, cand)
	}
	return results, nil
}
