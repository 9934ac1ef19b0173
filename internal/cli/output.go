// Package cli formats search responses and self-test reports for terminal
// and machine consumption.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/pipeline"
	"github.com/agentcommand/unisearch/pkg/utils"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// WriteSearchResponse writes a search response to w in the given format.
func WriteSearchResponse(w io.Writer, resp *models.SemanticSearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	writeSearchText(w, resp)
	return nil
}

func writeSearchText(w io.Writer, resp *models.SemanticSearchResponse) {
	fmt.Fprintf(w, "\nQuery: %q  intent=%s (%.2f)  complexity=%s\n",
		resp.Query.OriginalQuery,
		resp.Classification.PrimaryIntent,
		resp.Classification.Confidence,
		resp.Classification.QueryComplexity)
	fmt.Fprintf(w, "%d of %d candidates shown in %dms\n",
		len(resp.Results), resp.TotalCandidates, resp.ProcessingTimeMs)
	if resp.SuggestedPrompt != "" {
		fmt.Fprintf(w, "Suggested prompt: %s\n", resp.SuggestedPrompt)
	}
	fmt.Fprintln(w)
	for i, result := range resp.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, r *models.SemanticSearchResult) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "#%d [%s] combined=%.4f (kw=%.2f sem=%.2f ent=%.2f rec=%.2f rel=%.2f)\n",
		rank, r.Source, r.CombinedScore,
		r.KeywordScore, r.SemanticRelevance, r.EntityMatchScore,
		r.RecencyScore, r.RelationshipScore)
	switch {
	case r.MemoryResult != nil && r.MemoryResult.Memory != nil:
		mem := r.MemoryResult.Memory
		fmt.Fprintf(w, "Memory (%s): %s\n", mem.Agent, mem.Summary)
		if len(mem.Tags) > 0 {
			fmt.Fprintf(w, "Tags: %s\n", strings.Join(mem.Tags, ", "))
		}
	case r.RAGResult != nil && r.RAGResult.Document != nil:
		doc := r.RAGResult.Document
		fmt.Fprintf(w, "ID: %s\n", doc.ID)
		if doc.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", doc.Title)
		}
		if doc.Path != "" {
			fmt.Fprintf(w, "Path: %s\n", doc.Path)
		}
		snippet := r.RAGResult.Snippet
		if snippet == "" {
			snippet = utils.Truncate(doc.Content, 200)
		}
		fmt.Fprintf(w, "\n%s\n", snippet)
	}
	if r.ExplanationNote != "" {
		fmt.Fprintf(w, "Note: %s\n", r.ExplanationNote)
	}
	fmt.Fprintln(w)
}

// WriteSelfTestReport writes a batch self-test report to w.
func WriteSelfTestReport(w io.Writer, report *pipeline.SelfTestReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	writeSelfTestText(w, report)
	return nil
}

func writeSelfTestText(w io.Writer, report *pipeline.SelfTestReport) {
	fmt.Fprintf(w, "\nSelf-test: %d passed, %d failed (%dms total)\n\n",
		report.Passed, report.Failed, report.TotalTimeMs)
	for _, item := range report.Items {
		mark := "PASS"
		if !item.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "[%s] %q\n", mark, item.Query)
		if item.Error != "" {
			fmt.Fprintf(w, "       error: %s\n", item.Error)
			continue
		}
		fmt.Fprintf(w, "       results=%d top=%.4f intent=%s %dms\n",
			item.ResultCount, item.TopScore, item.DetectedIntent, item.ProcessingTimeMs)
	}
	if report.AllPassed() {
		fmt.Fprintln(w, "\nAll queries passed.")
	}
}
