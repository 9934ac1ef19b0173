package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/pipeline"
)

func sampleResponse() *models.SemanticSearchResponse {
	return &models.SemanticSearchResponse{
		Query: models.SearchQuery{OriginalQuery: "git status"},
		Classification: models.QueryClassification{
			PrimaryIntent:   models.IntentCodeSearch,
			Confidence:      0.72,
			QueryComplexity: models.ComplexitySimple,
		},
		Results: []*models.SemanticSearchResult{
			{
				ID:     "doc:1",
				Source: models.SourceRAGFullText,
				RAGResult: &models.RAGResult{
					Document: &models.Document{ID: "1", Title: "GitManager.swift", Content: "polls git status"},
					Snippet:  "polls git status",
				},
				KeywordScore:  0.9,
				CombinedScore: 0.61,
			},
			{
				ID:     "mem:2",
				Source: models.SourceAgentMemory,
				MemoryResult: &models.MemoryResult{
					Memory: &models.MemoryRecord{ID: "2", Agent: "builder", Summary: "git polling is throttled", Tags: []string{"git"}},
				},
				RecencyScore:  0.8,
				CombinedScore: 0.34,
			},
		},
		TotalCandidates:  5,
		ProcessingTimeMs: 12,
	}
}

func TestWriteSearchResponse_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResponse(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`"git status"`, "code_search", "2 of 5 candidates", "12ms",
		"GitManager.swift", "rag_full_text", "agent_memory",
		"Memory (builder)", "git polling is throttled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResponse_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResponse(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.SemanticSearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalCandidates != 5 || len(decoded.Results) != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestWriteSelfTestReport_Text(t *testing.T) {
	report := &pipeline.SelfTestReport{
		Items: []models.TestResultItem{
			{Query: "fix the polling bug", ResultCount: 3, TopScore: 0.8, DetectedIntent: models.IntentCodeFix, Passed: true},
			{Query: "nothing here", Passed: false},
		},
		Passed:      1,
		Failed:      1,
		TotalTimeMs: 40,
	}
	var buf bytes.Buffer
	if err := WriteSelfTestReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"1 passed, 1 failed", "[PASS]", "[FAIL]", "fix the polling bug"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "All queries passed.") {
		t.Error("AllPassed banner should not print with failures")
	}
}

func TestWriteSelfTestReport_JSON(t *testing.T) {
	report := &pipeline.SelfTestReport{
		Items:  []models.TestResultItem{{Query: "q", ResultCount: 1, Passed: true}},
		Passed: 1,
	}
	var buf bytes.Buffer
	if err := WriteSelfTestReport(&buf, report, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded pipeline.SelfTestReport
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Passed != 1 || len(decoded.Items) != 1 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}
