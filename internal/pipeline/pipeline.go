// Package pipeline orchestrates the live search flow: debounced input,
// classification, source fan-out, scoring, and the presented response slot.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/classify"
	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/retrieve"
	"github.com/agentcommand/unisearch/internal/score"
)

// Pipeline wires the query stages together and owns the presenter slot.
// Live input goes through the debounce gate; explicit submits bypass it.
// Completions are guarded by a sequence counter so only the latest dispatched
// request may write the slot (last request wins).
type Pipeline struct {
	classifier *classify.Classifier
	retriever  *retrieve.Retriever
	aggregator *score.Aggregator
	presenter  *Presenter
	gate       *DebounceGate
	cfg        config.SearchConfig
	logger     *zap.Logger

	seq atomic.Uint64
	// runMu serializes full pipeline executions: the self-test harness and
	// interactive dispatch never interleave on the slot.
	runMu sync.Mutex
	now   func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithClock pins the time source, used by tests for recency determinism.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline over the given retriever and search configuration.
func New(retriever *retrieve.Retriever, cfg config.SearchConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: classify.NewClassifier(),
		retriever:  retriever,
		aggregator: score.NewAggregator(cfg.Weights, cfg.MaxResults),
		presenter:  NewPresenter(),
		cfg:        cfg,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.gate = NewDebounceGate(
		time.Duration(cfg.DebounceMs)*time.Millisecond,
		func(query string) { p.dispatch(query, models.ModeHybrid) },
		p.Clear,
	)
	return p
}

// Presenter returns the response slot.
func (p *Pipeline) Presenter() *Presenter {
	return p.presenter
}

// UpdateQuery feeds one live input value through the debounce gate.
func (p *Pipeline) UpdateQuery(raw string) {
	p.gate.Update(raw)
}

// SubmitQuery dispatches immediately, bypassing the idle window.
func (p *Pipeline) SubmitQuery(raw string) {
	p.gate.Submit(raw)
}

// Clear cancels any pending dispatch, supersedes in-flight searches, and
// empties the slot. The gate forgets its last emitted value so re-typing the
// same query after a clear dispatches again.
func (p *Pipeline) Clear() {
	p.gate.Reset()
	p.seq.Add(1)
	p.presenter.Clear()
}

// dispatch runs one presented search. It claims the next sequence number;
// by completion a newer dispatch or clear may have claimed a higher one, in
// which case this response is discarded.
func (p *Pipeline) dispatch(query string, mode models.SearchMode) {
	seq := p.seq.Add(1)
	p.presenter.setProcessing(true)

	resp, err := p.Execute(context.Background(), query, mode)
	if err != nil {
		p.logger.Error("search dispatch failed", zap.String("query", query), zap.Error(err))
		if p.seq.Load() == seq {
			p.presenter.setProcessing(false)
		}
		return
	}

	if p.seq.Load() != seq {
		p.logger.Debug("superseded response discarded", zap.String("query", query))
		return
	}
	p.presenter.publish(resp)
}

// ErrEmptyQuery is returned by Execute for input that is empty after
// trimming. Empty input clears, it never searches or classifies.
var ErrEmptyQuery = errors.New("empty query")

// Execute runs the full pipeline once for a trimmed query and returns the
// response without touching the presenter slot. Used by dispatch, the
// one-shot CLI search, and the self-test harness.
func (p *Pipeline) Execute(ctx context.Context, query string, mode models.SearchMode) (*models.SemanticSearchResponse, error) {
	trimmed := classify.Normalize(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.now()
	sq := classify.BuildSearchQuery(trimmed, mode, p.cfg.MaxResults)
	cls := p.classifier.Classify(trimmed)

	candidates := p.retriever.Retrieve(ctx, sq, cls)

	scoreCtx := &score.Context{
		Query:           sq,
		Classification:  cls,
		Now:             p.now(),
		RecencyHalfLife: time.Duration(p.cfg.RecencyHalfLifeHours * float64(time.Hour)),
		MemoryHalfLife:  time.Duration(p.cfg.MemoryHalfLifeHours * float64(time.Hour)),
	}
	results, total := p.aggregator.Rank(scoreCtx, candidates)

	resp := &models.SemanticSearchResponse{
		Query:            sq,
		Classification:   cls,
		Results:          results,
		TotalCandidates:  total,
		ProcessingTimeMs: p.now().Sub(start).Milliseconds(),
		SuggestedPrompt:  classify.SuggestPrompt(cls, trimmed),
	}

	p.logger.Debug("search executed",
		zap.String("query", trimmed),
		zap.String("intent", string(cls.PrimaryIntent)),
		zap.Int("candidates", total),
		zap.Int("results", len(results)),
		zap.Int64("ms", resp.ProcessingTimeMs))
	return resp, nil
}
