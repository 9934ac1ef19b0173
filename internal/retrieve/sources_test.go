package retrieve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentcommand/unisearch/internal/embedding"
	"github.com/agentcommand/unisearch/internal/fulltext"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/internal/vector"
)

type fixture struct {
	store *storage.SQLiteStorage
	index *fulltext.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	index, err := fulltext.NewMemIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		store.Close()
		index.Close()
	})
	return &fixture{store: store, index: index}
}

func (f *fixture) addDoc(t *testing.T, id, title, path, content string) {
	t.Helper()
	ctx := context.Background()
	doc := &models.Document{ID: id, Title: title, Path: path, Content: content}
	if err := f.store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := f.index.Index(ctx, doc); err != nil {
		t.Fatal(err)
	}
}

func TestFullTextSource(t *testing.T) {
	f := newFixture(t)
	f.addDoc(t, "d1", "GitManager.swift", "Sources/GitManager.swift", "git status refresh loop")
	f.addDoc(t, "d2", "notes.md", "docs/notes.md", "unrelated docker notes")

	src := NewFullTextSource(f.index, f.store, 10)
	results, err := src.Retrieve(context.Background(),
		models.SearchQuery{OriginalQuery: "git refresh", FTSQuery: "git refresh"},
		models.QueryClassification{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.ID != "doc:d1" || got.Source != models.SourceRAGFullText {
		t.Errorf("got %+v", got)
	}
	if got.KeywordScore <= 0 || got.KeywordScore > 1 {
		t.Errorf("keyword score out of range: %f", got.KeywordScore)
	}
	if got.RAGResult == nil || got.RAGResult.Snippet == "" {
		t.Error("expected a document payload with snippet")
	}
	if got.MemoryResult != nil {
		t.Error("document result must not carry a memory payload")
	}
}

func TestRelationshipSource_ReturnsNeighborsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDoc(t, "seed", "GitManager.swift", "Sources/GitManager.swift", "git status refresh")
	f.addDoc(t, "neighbor", "GitStatusModel.swift", "Sources/GitStatusModel.swift", "model for parsed status")
	f.addDoc(t, "lonely", "README.md", "README.md", "no links")

	if err := f.store.UpsertLink(ctx, &models.DocumentLink{SourceID: "seed", TargetID: "neighbor", Kind: "import", Weight: 0.8}); err != nil {
		t.Fatal(err)
	}

	src := NewRelationshipSource(f.index, f.store, 5, 10)
	results, err := src.Retrieve(ctx,
		models.SearchQuery{OriginalQuery: "git refresh", FTSQuery: "git refresh"},
		models.QueryClassification{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 neighbor, got %d", len(results))
	}
	got := results[0]
	if got.ID != "doc:neighbor" {
		t.Errorf("got %s", got.ID)
	}
	if got.RelationshipScore != 0.8 {
		t.Errorf("relationship score should carry the link weight, got %f", got.RelationshipScore)
	}
}

func TestMemorySource_DecaysRelevance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := &models.MemoryRecord{ID: "m1", Agent: "builder", Summary: "docker stats polling interval", CreatedAt: now}
	old := &models.MemoryRecord{ID: "m2", Agent: "builder", Summary: "docker compose quirks", CreatedAt: now.Add(-72 * time.Hour)}
	for _, m := range []*models.MemoryRecord{fresh, old} {
		if err := f.store.CreateMemory(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	src := NewMemorySource(f.store, 72*time.Hour, 10)
	src.now = func() time.Time { return now }

	results, err := src.Retrieve(ctx,
		models.SearchQuery{OriginalQuery: "docker", SemanticKeywords: []string{"docker"}},
		models.QueryClassification{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(results))
	}
	byID := map[string]*models.SemanticSearchResult{}
	for _, r := range results {
		byID[r.ID] = r
		if r.MemoryResult == nil || r.RAGResult != nil {
			t.Errorf("memory result payload wrong: %+v", r)
		}
	}
	if rel := byID["mem:m1"].MemoryResult.Memory.Relevance; rel < 0.999 {
		t.Errorf("fresh memory should have relevance ~1, got %f", rel)
	}
	if rel := byID["mem:m2"].MemoryResult.Memory.Relevance; rel < 0.49 || rel > 0.51 {
		t.Errorf("memory at half-life should have relevance ~0.5, got %f", rel)
	}

	// No keywords, no lookup.
	results, err = src.Retrieve(ctx, models.SearchQuery{OriginalQuery: "the"}, models.QueryClassification{})
	if err != nil || len(results) != 0 {
		t.Errorf("expected no results without keywords, got %v, %v", results, err)
	}
}

func TestEntitySource_LooksUpEntityValues(t *testing.T) {
	f := newFixture(t)
	f.addDoc(t, "d1", "AppState.swift", "Sources/App/AppState.swift", "final class AppState")
	f.addDoc(t, "d2", "README.md", "README.md", "mentions AppState in prose")

	src := NewEntitySource(f.store, 10)
	cls := models.QueryClassification{ExtractedEntities: []models.QueryEntity{
		{Type: models.EntityFileName, Value: "AppState.swift", Confidence: 0.9},
		{Type: models.EntityFrameworkName, Value: "swiftui", Confidence: 0.8},
	}}

	results, err := src.Retrieve(context.Background(),
		models.SearchQuery{OriginalQuery: "where is AppState.swift"}, cls)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "doc:d1" {
		t.Fatalf("expected the named file only, got %+v", results)
	}

	// No entities, no candidates.
	results, _ = src.Retrieve(context.Background(),
		models.SearchQuery{OriginalQuery: "plain words"},
		models.QueryClassification{ExtractedEntities: []models.QueryEntity{}})
	if len(results) != 0 {
		t.Errorf("expected no results without entities, got %d", len(results))
	}
}

func TestSemanticSource_RanksByChunkSimilarity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDoc(t, "d1", "DockerManager.swift", "Sources/DockerManager.swift", "docker stats polling")
	f.addDoc(t, "d2", "Budget.xlsx", "docs/Budget.xlsx", "quarterly revenue")

	embedder := embedding.NewMockEmbedder(64)
	index, err := vector.NewMemoryIndex(64)
	if err != nil {
		t.Fatal(err)
	}

	chunks := []*models.DocumentChunk{
		{ID: "d1_c0", DocumentID: "d1", Content: "docker stats polling loop", ChunkIndex: 0},
		{ID: "d1_c1", DocumentID: "d1", Content: "container lifecycle handling", ChunkIndex: 1},
		{ID: "d2_c0", DocumentID: "d2", Content: "quarterly revenue spreadsheet", ChunkIndex: 0},
	}
	if err := f.store.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatal(err)
	}
	for _, c := range chunks {
		emb, _ := embedder.Embed(ctx, c.Content)
		if err := index.Add(ctx, []string{c.ID}, [][]float32{emb}); err != nil {
			t.Fatal(err)
		}
	}

	src := NewSemanticSource(embedder, index, f.store, 10)
	results, err := src.Retrieve(ctx,
		models.SearchQuery{OriginalQuery: "docker stats polling", SemanticKeywords: []string{"docker", "stats", "polling"}},
		models.QueryClassification{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected one candidate per document, got %d", len(results))
	}
	if results[0].ID != "doc:d1" {
		t.Errorf("most similar document should come first, got %s", results[0].ID)
	}
	if results[0].SemanticRelevance <= results[1].SemanticRelevance {
		t.Errorf("similarity not descending: %f <= %f",
			results[0].SemanticRelevance, results[1].SemanticRelevance)
	}
	for _, r := range results {
		if r.SemanticRelevance < 0 || r.SemanticRelevance > 1 {
			t.Errorf("similarity out of range: %f", r.SemanticRelevance)
		}
	}
}
