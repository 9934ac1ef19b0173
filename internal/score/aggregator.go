package score

import (
	"sort"

	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/models"
)

// Aggregator fuses the five score dimensions into a combined score and ranks
// candidates. Weights are normalized to sum to 1 at construction so the
// combined score stays within [0,1] and rises monotonically with any
// dimension.
type Aggregator struct {
	weights    config.ScoreWeights
	maxResults int

	keyword      Scorer
	semantic     Scorer
	entity       Scorer
	recency      Scorer
	relationship Scorer
}

// NewAggregator creates an Aggregator with the given weights and result cap.
// Negative weights are treated as zero; an all-zero weight set falls back to
// keyword-only scoring.
func NewAggregator(weights config.ScoreWeights, maxResults int) *Aggregator {
	weights = normalizeWeights(weights)
	if maxResults <= 0 {
		maxResults = 20
	}
	return &Aggregator{
		weights:      weights,
		maxResults:   maxResults,
		keyword:      &KeywordScorer{},
		semantic:     &SemanticScorer{},
		entity:       &EntityScorer{},
		recency:      &RecencyScorer{},
		relationship: &RelationshipScorer{},
	}
}

func normalizeWeights(w config.ScoreWeights) config.ScoreWeights {
	for _, v := range []*float64{&w.Keyword, &w.Semantic, &w.Entity, &w.Recency, &w.Relationship} {
		if *v < 0 {
			*v = 0
		}
	}
	sum := w.Keyword + w.Semantic + w.Entity + w.Recency + w.Relationship
	if sum == 0 {
		return config.ScoreWeights{Keyword: 1}
	}
	w.Keyword /= sum
	w.Semantic /= sum
	w.Entity /= sum
	w.Recency /= sum
	w.Relationship /= sum
	return w
}

// ScoreCandidate computes all five dimensions and the combined score for one
// candidate, storing them on the candidate.
func (a *Aggregator) ScoreCandidate(ctx *Context, cand *models.SemanticSearchResult) {
	cand.KeywordScore = a.keyword.Score(ctx, cand)
	cand.SemanticRelevance = a.semantic.Score(ctx, cand)
	cand.EntityMatchScore = a.entity.Score(ctx, cand)
	cand.RecencyScore = a.recency.Score(ctx, cand)
	cand.RelationshipScore = a.relationship.Score(ctx, cand)

	cand.CombinedScore = a.weights.Keyword*cand.KeywordScore +
		a.weights.Semantic*cand.SemanticRelevance +
		a.weights.Entity*cand.EntityMatchScore +
		a.weights.Recency*cand.RecencyScore +
		a.weights.Relationship*cand.RelationshipScore
}

// Rank scores all candidates, sorts them descending by combined score, and
// truncates to the configured result cap. Ties keep the candidates' incoming
// order, so equal-scored results stay in source fan-out order. The returned
// total is the candidate count before truncation.
func (a *Aggregator) Rank(ctx *Context, candidates []*models.SemanticSearchResult) (results []*models.SemanticSearchResult, total int) {
	for _, cand := range candidates {
		a.ScoreCandidate(ctx, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})

	total = len(candidates)
	if total > a.maxResults {
		candidates = candidates[:a.maxResults]
	}
	return candidates, total
}

// Weights returns the normalized weights in effect.
func (a *Aggregator) Weights() config.ScoreWeights {
	return a.weights
}
