package classify

import (
	"reflect"
	"testing"

	"github.com/agentcommand/unisearch/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  git status  ", "git status"},
		{"\n\tquery\t", "query"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"How does GitManager work?", "how does gitmanager work"},
		{`find "exact phrase"`, "find exact phrase"},
		{"AppState.swift", "appstate.swift"},
		{"internal/pipeline refresh!", "internal/pipeline refresh"},
		{"snake_case and kebab-case", "snake_case and kebab-case"},
	}
	for _, tt := range tests {
		if got := ToFTSQuery(tt.in); got != tt.want {
			t.Errorf("ToFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSemanticKeywords(t *testing.T) {
	got := SemanticKeywords("How does the git manager refresh the git status")
	want := []string{"git", "manager", "refresh", "status"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := SemanticKeywords("the of and"); len(got) != 0 {
		t.Errorf("stopwords only should yield nothing, got %v", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want models.QueryLanguage
	}{
		{"git status refresh", models.LanguageEnglish},
		{"エラーを直す", models.LanguageCJK},
		{"fix 修复 the bug", models.LanguageCJK},
		{"исправить ошибку", models.LanguageOther},
		{"123 !?", models.LanguageEnglish},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.in); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBuildSearchQuery(t *testing.T) {
	sq := BuildSearchQuery("Fix the GitManager refresh", "", 20)
	if sq.Mode != models.ModeHybrid {
		t.Errorf("empty mode should default to hybrid, got %s", sq.Mode)
	}
	if sq.OriginalQuery != "Fix the GitManager refresh" {
		t.Errorf("original query altered: %q", sq.OriginalQuery)
	}
	if sq.FTSQuery != "fix the gitmanager refresh" {
		t.Errorf("fts query: %q", sq.FTSQuery)
	}
	if sq.Limit != 20 || sq.IsEmpty() {
		t.Errorf("got %+v", sq)
	}

	var empty *models.SearchQuery
	if !empty.IsEmpty() {
		t.Error("nil query should be empty")
	}
}
