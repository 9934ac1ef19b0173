package score

import (
	"testing"
	"time"

	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/models"
)

func defaultWeights() config.ScoreWeights {
	return config.ScoreWeights{Keyword: 0.30, Semantic: 0.25, Entity: 0.20, Recency: 0.10, Relationship: 0.15}
}

func TestNormalizeWeights(t *testing.T) {
	a := NewAggregator(config.ScoreWeights{Keyword: 3, Semantic: 1}, 10)
	w := a.Weights()
	if !closeTo(w.Keyword, 0.75) || !closeTo(w.Semantic, 0.25) {
		t.Errorf("got %+v", w)
	}

	a = NewAggregator(config.ScoreWeights{Keyword: -1, Semantic: -2}, 10)
	if w := a.Weights(); w.Keyword != 1 {
		t.Errorf("all-zero weights should fall back to keyword-only, got %+v", w)
	}
}

func TestAggregator_CombinedScoreBounds(t *testing.T) {
	a := NewAggregator(defaultWeights(), 10)
	ctx := testContext("git manager refresh", []string{"git", "manager", "refresh"})
	ctx.Classification.ExtractedEntities = []models.QueryEntity{
		{Type: models.EntityClassName, Value: "GitManager", Confidence: 0.7},
	}

	// A candidate maxing every dimension stays at or below 1.
	best := docCandidate("GitManager", "Sources/GitManager.swift", "git manager refresh GitManager", ctx.Now)
	best.SemanticRelevance = 1.0
	best.RelationshipScore = 1.0
	a.ScoreCandidate(ctx, best)
	if best.CombinedScore < 0 || best.CombinedScore > 1 {
		t.Errorf("combined score out of bounds: %f", best.CombinedScore)
	}
	if !closeTo(best.CombinedScore, 1.0) {
		t.Errorf("all-ones candidate should score 1, got %f", best.CombinedScore)
	}

	empty := docCandidate("Unrelated", "", "nothing here", time.Time{})
	a.ScoreCandidate(ctx, empty)
	if empty.CombinedScore != 0 {
		t.Errorf("no-signal candidate should score 0, got %f", empty.CombinedScore)
	}
}

func TestAggregator_Monotone(t *testing.T) {
	a := NewAggregator(defaultWeights(), 10)
	ctx := testContext("zzz", nil)

	low := docCandidate("A", "", "", time.Time{})
	low.SemanticRelevance = 0.3
	high := docCandidate("B", "", "", time.Time{})
	high.SemanticRelevance = 0.8

	a.ScoreCandidate(ctx, low)
	a.ScoreCandidate(ctx, high)
	if high.CombinedScore <= low.CombinedScore {
		t.Errorf("raising one dimension must raise the combined score: %f <= %f",
			high.CombinedScore, low.CombinedScore)
	}
}

func TestAggregator_RankSortsAndTruncates(t *testing.T) {
	a := NewAggregator(defaultWeights(), 2)
	ctx := testContext("zzz", nil)

	cands := []*models.SemanticSearchResult{
		docCandidate("low", "", "", time.Time{}),
		docCandidate("high", "", "", time.Time{}),
		docCandidate("mid", "", "", time.Time{}),
	}
	cands[0].SemanticRelevance = 0.2
	cands[1].SemanticRelevance = 0.9
	cands[2].SemanticRelevance = 0.5

	results, total := a.Rank(ctx, cands)
	if total != 3 {
		t.Errorf("total should count pre-truncation candidates, got %d", total)
	}
	if len(results) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(results))
	}
	if results[0].RAGResult.Document.Title != "high" || results[1].RAGResult.Document.Title != "mid" {
		t.Errorf("wrong order: %s, %s",
			results[0].RAGResult.Document.Title, results[1].RAGResult.Document.Title)
	}
}

func TestAggregator_StableTieOrder(t *testing.T) {
	a := NewAggregator(defaultWeights(), 10)
	ctx := testContext("zzz", nil)

	// Identical scores: incoming order must survive the sort.
	names := []string{"first", "second", "third", "fourth"}
	cands := make([]*models.SemanticSearchResult, len(names))
	for i, n := range names {
		cands[i] = docCandidate(n, "", "", time.Time{})
		cands[i].SemanticRelevance = 0.5
	}

	results, _ := a.Rank(ctx, cands)
	for i, n := range names {
		if results[i].RAGResult.Document.Title != n {
			t.Fatalf("tie order broken at %d: got %s, want %s",
				i, results[i].RAGResult.Document.Title, n)
		}
	}
}

func TestAggregator_MemoryCandidates(t *testing.T) {
	a := NewAggregator(defaultWeights(), 10)
	ctx := testContext("docker polling", []string{"docker", "polling"})

	mem := memCandidate("docker stats polling uses a 2s interval", ctx.Now)
	a.ScoreCandidate(ctx, mem)
	if mem.CombinedScore <= 0 {
		t.Errorf("matching memory should score above 0, got %f", mem.CombinedScore)
	}
	if mem.RAGResult != nil {
		t.Error("memory candidate must not carry a document payload")
	}
}
