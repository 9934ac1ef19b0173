package retrieve

import (
	"context"
	"fmt"

	"github.com/agentcommand/unisearch/internal/fulltext"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/pkg/utils"
)

const snippetLength = 200

// FullTextSource retrieves candidates from the Bleve full-text index.
type FullTextSource struct {
	index   *fulltext.Index
	storage storage.Storage
	topK    int
}

// NewFullTextSource creates the full-text source fetching up to topK candidates.
func NewFullTextSource(index *fulltext.Index, store storage.Storage, topK int) *FullTextSource {
	return &FullTextSource{index: index, storage: store, topK: topK}
}

func (s *FullTextSource) Name() models.ResultSource {
	return models.SourceRAGFullText
}

func (s *FullTextSource) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error) {
	hits, err := s.index.Search(ctx, query.FTSQuery, s.topK)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}

	results := make([]*models.SemanticSearchResult, 0, len(hits))
	for _, hit := range hits {
		doc, err := s.storage.GetDocument(ctx, hit.ID)
		if err != nil {
			// Index can briefly lead storage during re-ingestion.
			continue
		}
		snippet := hit.Fragment
		if snippet == "" {
			snippet = utils.Truncate(doc.Content, snippetLength)
		}
		results = append(results, &models.SemanticSearchResult{
			ID:           "doc:" + doc.ID,
			Source:       models.SourceRAGFullText,
			RAGResult:    &models.RAGResult{Document: doc, Snippet: snippet},
			KeywordScore: hit.Score,
		})
	}
	return results, nil
}
