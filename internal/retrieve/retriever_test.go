package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/agentcommand/unisearch/internal/models"
)

type fakeSource struct {
	name    models.ResultSource
	results []*models.SemanticSearchResult
	err     error
	called  bool
}

func (f *fakeSource) Name() models.ResultSource { return f.name }

func (f *fakeSource) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error) {
	f.called = true
	return f.results, f.err
}

func docResult(source models.ResultSource, docID string) *models.SemanticSearchResult {
	return &models.SemanticSearchResult{
		ID:        "doc:" + docID,
		Source:    source,
		RAGResult: &models.RAGResult{Document: &models.Document{ID: docID}},
	}
}

func hybridQuery(q string) models.SearchQuery {
	return models.SearchQuery{OriginalQuery: q, FTSQuery: q, Mode: models.ModeHybrid}
}

func TestRetriever_MergesInSourceOrder(t *testing.T) {
	a := &fakeSource{name: models.SourceRAGFullText, results: []*models.SemanticSearchResult{
		docResult(models.SourceRAGFullText, "d1"),
		docResult(models.SourceRAGFullText, "d2"),
	}}
	b := &fakeSource{name: models.SourceEntityDirect, results: []*models.SemanticSearchResult{
		docResult(models.SourceEntityDirect, "d3"),
	}}

	r := NewRetriever([]Source{a, b})
	merged := r.Retrieve(context.Background(), hybridQuery("q"), models.QueryClassification{})

	if len(merged) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(merged))
	}
	want := []string{"doc:d1", "doc:d2", "doc:d3"}
	for i, id := range want {
		if merged[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, merged[i].ID, id)
		}
	}
}

func TestRetriever_SourceFailureTolerated(t *testing.T) {
	failing := &fakeSource{name: models.SourceRAGFullText, err: errors.New("index offline")}
	working := &fakeSource{name: models.SourceAgentMemory, results: []*models.SemanticSearchResult{
		{ID: "mem:m1", Source: models.SourceAgentMemory, MemoryResult: &models.MemoryResult{Memory: &models.MemoryRecord{ID: "m1"}}},
	}}

	r := NewRetriever([]Source{failing, working})
	merged := r.Retrieve(context.Background(), hybridQuery("q"), models.QueryClassification{})

	if len(merged) != 1 || merged[0].ID != "mem:m1" {
		t.Errorf("failing source should contribute nothing, got %+v", merged)
	}
}

func TestRetriever_AllSourcesFail(t *testing.T) {
	r := NewRetriever([]Source{
		&fakeSource{name: models.SourceRAGFullText, err: errors.New("down")},
		&fakeSource{name: models.SourceAgentMemory, err: errors.New("down")},
	})
	merged := r.Retrieve(context.Background(), hybridQuery("q"), models.QueryClassification{})
	if len(merged) != 0 {
		t.Errorf("expected empty candidate set, got %d", len(merged))
	}
}

func TestRetriever_ModeFiltering(t *testing.T) {
	sources := []*fakeSource{
		{name: models.SourceRAGFullText},
		{name: models.SourceRAGRelationship},
		{name: models.SourceAgentMemory},
		{name: models.SourceEntityDirect},
		{name: models.SourceSemanticExpansion},
	}
	asSources := make([]Source, len(sources))
	for i, s := range sources {
		asSources[i] = s
	}

	tests := []struct {
		mode   models.SearchMode
		called map[models.ResultSource]bool
	}{
		{models.ModeHybrid, map[models.ResultSource]bool{
			models.SourceRAGFullText: true, models.SourceRAGRelationship: true,
			models.SourceAgentMemory: true, models.SourceEntityDirect: true,
			models.SourceSemanticExpansion: true,
		}},
		{models.ModeRAGOnly, map[models.ResultSource]bool{
			models.SourceRAGFullText: true, models.SourceRAGRelationship: true,
		}},
		{models.ModeSemanticOnly, map[models.ResultSource]bool{
			models.SourceEntityDirect: true, models.SourceSemanticExpansion: true,
		}},
	}

	for _, tt := range tests {
		for _, s := range sources {
			s.called = false
		}
		r := NewRetriever(asSources)
		query := hybridQuery("q")
		query.Mode = tt.mode
		r.Retrieve(context.Background(), query, models.QueryClassification{})

		for _, s := range sources {
			if s.called != tt.called[s.name] {
				t.Errorf("mode %s: source %s called=%v, want %v", tt.mode, s.name, s.called, tt.called[s.name])
			}
		}
	}
}

func TestRetriever_DuplicateCandidatesMergeScores(t *testing.T) {
	first := docResult(models.SourceRAGFullText, "d1")
	first.KeywordScore = 0.9
	second := docResult(models.SourceSemanticExpansion, "d1")
	second.SemanticRelevance = 0.7
	second.RAGResult.Snippet = "from a chunk"

	r := NewRetriever([]Source{
		&fakeSource{name: models.SourceRAGFullText, results: []*models.SemanticSearchResult{first}},
		&fakeSource{name: models.SourceSemanticExpansion, results: []*models.SemanticSearchResult{second}},
	})
	merged := r.Retrieve(context.Background(), hybridQuery("q"), models.QueryClassification{})

	if len(merged) != 1 {
		t.Fatalf("expected 1 merged candidate, got %d", len(merged))
	}
	got := merged[0]
	if got.Source != models.SourceRAGFullText {
		t.Errorf("first source should win the payload, got %s", got.Source)
	}
	if got.KeywordScore != 0.9 || got.SemanticRelevance != 0.7 {
		t.Errorf("scores not merged: %+v", got)
	}
	if got.RAGResult.Snippet != "from a chunk" {
		t.Errorf("empty snippet should take the duplicate's, got %q", got.RAGResult.Snippet)
	}
}
