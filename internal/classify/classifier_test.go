package classify

import (
	"testing"

	"github.com/agentcommand/unisearch/internal/models"
)

func TestClassify_Intents(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		query string
		want  models.QueryIntent
	}{
		{"fix the docker polling bug", models.IntentCodeFix},
		{"explain how does the workflow executor work", models.IntentCodeExplain},
		{"where is SessionAnalytics defined", models.IntentFileNavigation},
		{"which packages depend on the indexer", models.IntentDependencyQuery},
		{"refactor the status parsing", models.IntentCodeRefactor},
		{"generate a config loader", models.IntentCodeGenerate},
		{"panic: index out of range", models.IntentErrorDiagnosis},
		{"find usages of refresh", models.IntentCodeSearch},
		{"weekend plans", models.IntentGeneral},
	}
	for _, tt := range tests {
		got := c.Classify(tt.query)
		if got.PrimaryIntent != tt.want {
			t.Errorf("Classify(%q).PrimaryIntent = %s, want %s", tt.query, got.PrimaryIntent, tt.want)
		}
	}
}

func TestClassify_EntityShapeFallback(t *testing.T) {
	c := NewClassifier()

	// No verbal cue, only a file reference: navigation.
	got := c.Classify("AppState.swift")
	if got.PrimaryIntent != models.IntentFileNavigation {
		t.Errorf("bare file name should classify as navigation, got %s", got.PrimaryIntent)
	}

	// Bare code identifier: code search.
	got = c.Classify("refreshStatus()")
	if got.PrimaryIntent != models.IntentCodeSearch {
		t.Errorf("bare function should classify as code search, got %s", got.PrimaryIntent)
	}
}

func TestClassify_ConfidenceBounds(t *testing.T) {
	c := NewClassifier()
	queries := []string{
		"zzz",
		"fix the error in GitManager.swift and DockerManager.swift and refreshStatus()",
		"explain explain explain fix fix error error error",
		"weekend plans",
	}
	for _, q := range queries {
		got := c.Classify(q)
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Classify(%q).Confidence = %f, out of [0,1]", q, got.Confidence)
		}
		if got.ExtractedEntities == nil {
			t.Errorf("Classify(%q) entities must not be nil", q)
		}
	}

	if got := c.Classify("zzz"); got.Confidence > minLowConfidence() {
		t.Errorf("single unknown token should stay uncertain, got %f", got.Confidence)
	}
	cued := c.Classify("fix the docker polling bug")
	vague := c.Classify("weekend plans")
	if cued.Confidence <= vague.Confidence {
		t.Errorf("cued query should be more confident: %f <= %f", cued.Confidence, vague.Confidence)
	}
}

func minLowConfidence() float64 { return 0.25 }

func TestClassify_Complexity(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		query string
		want  models.QueryComplexity
	}{
		{"refresh", models.ComplexitySimple},
		{"how does the git manager refresh", models.ComplexityModerate},
		{`explain how GitManager.swift and DockerManager.swift share the "polling loop" helper`, models.ComplexityComplex},
	}
	for _, tt := range tests {
		got := c.Classify(tt.query)
		if got.QueryComplexity != tt.want {
			t.Errorf("Classify(%q).QueryComplexity = %s, want %s", tt.query, got.QueryComplexity, tt.want)
		}
	}
}

func TestSuggestPrompt(t *testing.T) {
	c := NewClassifier()
	cls := c.Classify("fix the docker polling bug")
	if got := SuggestPrompt(cls, "fix the docker polling bug"); got == "" {
		t.Error("fix intent should suggest a prompt")
	}
	cls = c.Classify("weekend plans")
	if got := SuggestPrompt(cls, "weekend plans"); got != "" {
		t.Errorf("general intent should not suggest, got %q", got)
	}
}
