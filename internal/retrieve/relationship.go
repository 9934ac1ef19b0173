package retrieve

import (
	"context"
	"fmt"

	"github.com/agentcommand/unisearch/internal/fulltext"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/pkg/utils"
)

// RelationshipSource retrieves documents linked to the query's strongest
// full-text hits. It surfaces related files a lexical search misses: the
// importers, the imported, the co-changed.
type RelationshipSource struct {
	index    *fulltext.Index
	storage  storage.Storage
	seedSize int
	topK     int
}

// NewRelationshipSource creates the relationship source. seedSize caps the
// full-text seed hits whose neighbors are expanded.
func NewRelationshipSource(index *fulltext.Index, store storage.Storage, seedSize, topK int) *RelationshipSource {
	if seedSize <= 0 {
		seedSize = 5
	}
	return &RelationshipSource{index: index, storage: store, seedSize: seedSize, topK: topK}
}

func (s *RelationshipSource) Name() models.ResultSource {
	return models.SourceRAGRelationship
}

func (s *RelationshipSource) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error) {
	seeds, err := s.index.Search(ctx, query.FTSQuery, s.seedSize)
	if err != nil {
		return nil, fmt.Errorf("relationship seed search: %w", err)
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	seedIDs := make([]string, 0, len(seeds))
	seedSet := make(map[string]bool, len(seeds))
	for _, hit := range seeds {
		seedIDs = append(seedIDs, hit.ID)
		seedSet[hit.ID] = true
	}

	links, err := s.storage.GetLinksFrom(ctx, seedIDs)
	if err != nil {
		return nil, fmt.Errorf("link lookup: %w", err)
	}

	results := make([]*models.SemanticSearchResult, 0, len(links))
	seen := make(map[string]bool)
	for _, link := range links {
		if len(results) >= s.topK {
			break
		}
		// Neighbors only; seeds themselves arrive via the full-text source.
		if seedSet[link.TargetID] || seen[link.TargetID] {
			continue
		}
		doc, err := s.storage.GetDocument(ctx, link.TargetID)
		if err != nil {
			continue
		}
		seen[link.TargetID] = true
		weight := link.Weight
		if weight > 1 {
			weight = 1
		}
		if weight < 0 {
			weight = 0
		}
		results = append(results, &models.SemanticSearchResult{
			ID:                "doc:" + doc.ID,
			Source:            models.SourceRAGRelationship,
			RAGResult:         &models.RAGResult{Document: doc, Snippet: utils.Truncate(doc.Content, snippetLength)},
			RelationshipScore: weight,
			ExplanationNote:   fmt.Sprintf("linked (%s) from a top match", link.Kind),
		})
	}
	return results, nil
}
