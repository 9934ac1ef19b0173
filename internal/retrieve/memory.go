package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/pkg/utils"
)

// MemorySource retrieves agent memories matching the query's semantic
// keywords. Each memory carries a relevance decayed by age, so stale lessons
// fade out of results without being deleted.
type MemorySource struct {
	storage  storage.Storage
	halfLife time.Duration
	topK     int
	// now is swappable for tests.
	now func() time.Time
}

// NewMemorySource creates the agent-memory source.
func NewMemorySource(store storage.Storage, halfLife time.Duration, topK int) *MemorySource {
	return &MemorySource{storage: store, halfLife: halfLife, topK: topK, now: time.Now}
}

func (s *MemorySource) Name() models.ResultSource {
	return models.SourceAgentMemory
}

func (s *MemorySource) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error) {
	terms := query.SemanticKeywords
	if len(terms) == 0 {
		return nil, nil
	}
	memories, err := s.storage.SearchMemories(ctx, terms, s.topK)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}

	now := s.now()
	results := make([]*models.SemanticSearchResult, 0, len(memories))
	for _, mem := range memories {
		mem.Relevance = decayedRelevance(now, mem.CreatedAt, s.halfLife)
		results = append(results, &models.SemanticSearchResult{
			ID:           "mem:" + mem.ID,
			Source:       models.SourceAgentMemory,
			MemoryResult: &models.MemoryResult{Memory: mem},
			// The decayed relevance doubles as the memory's keyword signal;
			// a fresh matching memory should compete with document hits.
			KeywordScore: mem.Relevance,
		})
	}
	return results, nil
}

// decayedRelevance halves each halfLife since created, clamped to [0,1].
func decayedRelevance(now, created time.Time, halfLife time.Duration) float64 {
	if created.IsZero() {
		return 0
	}
	return utils.HalfLifeDecay(now.Sub(created), halfLife)
}
