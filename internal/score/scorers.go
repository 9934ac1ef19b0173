// Package score computes dimension scores for retrieval candidates and fuses
// them into one ranked result list.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/pkg/utils"
)

// Context provides everything needed to score one batch of candidates.
type Context struct {
	// Query is the dispatched query.
	Query models.SearchQuery
	// Classification is the classifier's verdict on the query.
	Classification models.QueryClassification
	// Now anchors recency decay; tests pin it for determinism.
	Now time.Time
	// RecencyHalfLife controls document recency decay.
	RecencyHalfLife time.Duration
	// MemoryHalfLife controls agent-memory recency decay.
	MemoryHalfLife time.Duration
}

// Scorer computes one score dimension for a candidate. Implementations must
// return values within [0,1].
type Scorer interface {
	Score(ctx *Context, cand *models.SemanticSearchResult) float64
	Name() string
}

// KeywordScorer scores lexical overlap between the query terms and the
// candidate's text. Candidates arriving with a source-native keyword score
// (the full-text index reports one) keep the higher of the two.
type KeywordScorer struct{}

func (s *KeywordScorer) Name() string { return "keyword" }

func (s *KeywordScorer) Score(ctx *Context, cand *models.SemanticSearchResult) float64 {
	terms := strings.Fields(ctx.Query.FTSQuery)
	if len(terms) == 0 {
		return clamp01(cand.KeywordScore)
	}
	text := strings.ToLower(candidateText(cand))
	matched := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			matched++
		}
	}
	overlap := float64(matched) / float64(len(terms))
	return clamp01(math.Max(overlap, cand.KeywordScore))
}

// SemanticScorer passes through the embedding similarity reported by the
// semantic-expansion source. Candidates from other sources fall back to a weak
// proxy: overlap of the query's semantic keywords with the candidate text.
type SemanticScorer struct{}

func (s *SemanticScorer) Name() string { return "semantic" }

func (s *SemanticScorer) Score(ctx *Context, cand *models.SemanticSearchResult) float64 {
	if cand.SemanticRelevance > 0 {
		return clamp01(cand.SemanticRelevance)
	}
	keywords := ctx.Query.SemanticKeywords
	if len(keywords) == 0 {
		return 0
	}
	text := strings.ToLower(candidateText(cand))
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched++
		}
	}
	// Lexical overlap is not semantic similarity; cap the proxy at 0.5.
	return 0.5 * float64(matched) / float64(len(keywords))
}

// EntityScorer scores how well the candidate matches the entities extracted
// from the query, weighted by each entity's extraction confidence. Matching
// entities are recorded on the candidate for result explanation.
type EntityScorer struct{}

func (s *EntityScorer) Name() string { return "entity" }

func (s *EntityScorer) Score(ctx *Context, cand *models.SemanticSearchResult) float64 {
	entities := ctx.Classification.ExtractedEntities
	if len(entities) == 0 {
		return 0
	}
	text := strings.ToLower(candidateText(cand))
	var matchedWeight, totalWeight float64
	for _, e := range entities {
		totalWeight += e.Confidence
		if strings.Contains(text, strings.ToLower(e.Value)) {
			matchedWeight += e.Confidence
			cand.MatchedEntities = append(cand.MatchedEntities, e)
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return clamp01(matchedWeight / totalWeight)
}

// RecencyScorer scores exponential decay on the candidate's timestamp.
// Documents decay on their update time with the document half-life; agent
// memories decay on creation time with the shorter memory half-life.
type RecencyScorer struct{}

func (s *RecencyScorer) Name() string { return "recency" }

func (s *RecencyScorer) Score(ctx *Context, cand *models.SemanticSearchResult) float64 {
	var ts time.Time
	halfLife := ctx.RecencyHalfLife
	switch {
	case cand.MemoryResult != nil && cand.MemoryResult.Memory != nil:
		ts = cand.MemoryResult.Memory.CreatedAt
		halfLife = ctx.MemoryHalfLife
	case cand.RAGResult != nil && cand.RAGResult.Document != nil:
		ts = cand.RAGResult.Document.UpdatedAt
	}
	if ts.IsZero() {
		return 0
	}
	return clamp01(utils.HalfLifeDecay(ctx.Now.Sub(ts), halfLife))
}

// RelationshipScorer passes through the link-graph proximity reported by the
// relationship source. Other sources have no graph signal and score zero.
type RelationshipScorer struct{}

func (s *RelationshipScorer) Name() string { return "relationship" }

func (s *RelationshipScorer) Score(ctx *Context, cand *models.SemanticSearchResult) float64 {
	return clamp01(cand.RelationshipScore)
}

// candidateText returns the searchable text of a candidate: title, path, and
// content for documents; summary and tags for memories.
func candidateText(cand *models.SemanticSearchResult) string {
	if cand.MemoryResult != nil && cand.MemoryResult.Memory != nil {
		mem := cand.MemoryResult.Memory
		return mem.Summary + " " + strings.Join(mem.Tags, " ")
	}
	if cand.RAGResult != nil && cand.RAGResult.Document != nil {
		doc := cand.RAGResult.Document
		return doc.Title + " " + doc.Path + " " + doc.Content
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
