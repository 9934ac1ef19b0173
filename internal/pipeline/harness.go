package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/models"
)

// minPassConfidence is the classifier confidence a query must exceed, on top
// of returning results, for its self-test item to pass.
const minPassConfidence = 0.3

// SelfTestReport summarizes one batch harness run.
type SelfTestReport struct {
	Items       []models.TestResultItem `json:"items"`
	Passed      int                     `json:"passed"`
	Failed      int                     `json:"failed"`
	TotalTimeMs int64                   `json:"total_time_ms"`
}

// AllPassed reports whether every query passed.
func (r *SelfTestReport) AllPassed() bool {
	return r.Failed == 0
}

// RunSelfTest runs the canned queries sequentially through the full pipeline
// and records one item per query. A failing query marks its item failed and
// the run continues. Execution is serialized with interactive dispatch, so a
// self-test never interleaves with live searches.
func (p *Pipeline) RunSelfTest(ctx context.Context, queries []string) *SelfTestReport {
	report := &SelfTestReport{Items: make([]models.TestResultItem, 0, len(queries))}

	for _, query := range queries {
		item := models.TestResultItem{Query: query}

		resp, err := p.Execute(ctx, query, models.ModeHybrid)
		if err != nil {
			item.Error = err.Error()
			p.logger.Warn("self-test query failed", zap.String("query", query), zap.Error(err))
		} else {
			item.ResultCount = len(resp.Results)
			item.ProcessingTimeMs = resp.ProcessingTimeMs
			item.DetectedIntent = resp.Classification.PrimaryIntent
			if len(resp.Results) > 0 {
				item.TopScore = resp.Results[0].CombinedScore
			}
			item.Passed = item.ResultCount > 0 && resp.Classification.Confidence > minPassConfidence
		}

		if item.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.TotalTimeMs += item.ProcessingTimeMs
		report.Items = append(report.Items, item)
	}
	return report
}
