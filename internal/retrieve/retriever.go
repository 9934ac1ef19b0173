// Package retrieve fans a query out to the candidate sources and merges
// their results into one candidate set.
package retrieve

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/models"
)

// Source produces candidates for a query. Implementations must be safe for
// concurrent use; the retriever calls all selected sources in parallel.
type Source interface {
	Name() models.ResultSource
	Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error)
}

// Retriever runs sources concurrently and merges their candidates. A failing
// source contributes zero candidates; it never fails the search.
type Retriever struct {
	sources []Source
	logger  *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retriever) { r.logger = logger }
}

// NewRetriever creates a Retriever over the given sources. Source order fixes
// the fan-out order of merged candidates, which downstream stable ranking
// preserves on score ties.
func NewRetriever(sources []Source, opts ...Option) *Retriever {
	r := &Retriever{
		sources: sources,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// sourcesForMode selects which sources run for the query's search mode.
func (r *Retriever) sourcesForMode(mode models.SearchMode) []Source {
	if mode == "" || mode == models.ModeHybrid {
		return r.sources
	}
	selected := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		switch s.Name() {
		case models.SourceRAGFullText, models.SourceRAGRelationship:
			if mode == models.ModeRAGOnly {
				selected = append(selected, s)
			}
		case models.SourceEntityDirect, models.SourceSemanticExpansion:
			if mode == models.ModeSemanticOnly {
				selected = append(selected, s)
			}
		}
	}
	return selected
}

// Retrieve fans the query out to the mode's sources, one goroutine per
// source, and returns the merged candidate set in source order. Candidates
// appearing in multiple sources are merged into one entry keeping the first
// payload and the maximum of each source-native score.
func (r *Retriever) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) []*models.SemanticSearchResult {
	sources := r.sourcesForMode(query.Mode)
	perSource := make([][]*models.SemanticSearchResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results, err := src.Retrieve(ctx, query, cls)
			if err != nil {
				r.logger.Warn("source failed",
					zap.String("source", string(src.Name())),
					zap.String("query", query.OriginalQuery),
					zap.Error(err))
				return
			}
			perSource[i] = results
		}(i, src)
	}
	wg.Wait()

	merged := make([]*models.SemanticSearchResult, 0, 32)
	byID := make(map[string]*models.SemanticSearchResult)
	for _, results := range perSource {
		for _, cand := range results {
			existing, ok := byID[cand.ID]
			if !ok {
				byID[cand.ID] = cand
				merged = append(merged, cand)
				continue
			}
			mergeScores(existing, cand)
		}
	}
	return merged
}

// mergeScores folds a duplicate candidate's source-native scores into the
// retained one.
func mergeScores(dst, src *models.SemanticSearchResult) {
	if src.KeywordScore > dst.KeywordScore {
		dst.KeywordScore = src.KeywordScore
	}
	if src.SemanticRelevance > dst.SemanticRelevance {
		dst.SemanticRelevance = src.SemanticRelevance
	}
	if src.RelationshipScore > dst.RelationshipScore {
		dst.RelationshipScore = src.RelationshipScore
	}
	if dst.RAGResult != nil && dst.RAGResult.Snippet == "" && src.RAGResult != nil {
		dst.RAGResult.Snippet = src.RAGResult.Snippet
	}
}
