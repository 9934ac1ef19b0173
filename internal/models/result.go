package models

// ResultSource identifies which retrieval source produced a candidate.
type ResultSource string

const (
	// SourceRAGFullText is the keyword/full-text document index.
	SourceRAGFullText ResultSource = "rag_full_text"
	// SourceRAGRelationship is the document link graph.
	SourceRAGRelationship ResultSource = "rag_relationship"
	// SourceAgentMemory is the agent memory store.
	SourceAgentMemory ResultSource = "agent_memory"
	// SourceEntityDirect is exact entity lookup against titles and paths.
	SourceEntityDirect ResultSource = "entity_direct"
	// SourceSemanticExpansion is embedding-based expansion over chunks.
	SourceSemanticExpansion ResultSource = "semantic_expansion"
)

// IsMemory reports whether results from this source carry a MemoryResult
// instead of a RAGResult.
func (s ResultSource) IsMemory() bool {
	return s == SourceAgentMemory
}

// RAGResult is the document payload of a non-memory search result.
type RAGResult struct {
	Document *Document `json:"document"`
	// Snippet is the matched excerpt shown inline; may equal a content prefix
	// when the index produced no fragment.
	Snippet string `json:"snippet,omitempty"`
}

// MemoryResult is the agent-memory payload of a memory search result.
type MemoryResult struct {
	Memory *MemoryRecord `json:"memory"`
}

// SemanticSearchResult is one ranked candidate. Exactly one of RAGResult and
// MemoryResult is set, consistent with Source. All dimension scores and
// CombinedScore are within [0,1].
type SemanticSearchResult struct {
	ID     string       `json:"id"`
	Source ResultSource `json:"source"`

	RAGResult    *RAGResult    `json:"rag_result,omitempty"`
	MemoryResult *MemoryResult `json:"memory_result,omitempty"`

	KeywordScore      float64 `json:"keyword_score"`
	SemanticRelevance float64 `json:"semantic_relevance"`
	EntityMatchScore  float64 `json:"entity_match_score"`
	RecencyScore      float64 `json:"recency_score"`
	RelationshipScore float64 `json:"relationship_score"`
	CombinedScore     float64 `json:"combined_score"`

	MatchedEntities []QueryEntity `json:"matched_entities,omitempty"`
	ExplanationNote string        `json:"explanation_note,omitempty"`
}

// SemanticSearchResponse is the immutable response to one dispatched query.
// Results are sorted descending by CombinedScore with ties preserving fan-out
// order; TotalCandidates counts candidates before truncation.
type SemanticSearchResponse struct {
	Query            SearchQuery            `json:"query"`
	Classification   QueryClassification    `json:"classification"`
	Results          []*SemanticSearchResult `json:"results"`
	TotalCandidates  int                    `json:"total_candidates"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	SuggestedPrompt  string                 `json:"suggested_prompt,omitempty"`
}

// HasResults reports whether the response carries at least one result.
func (r *SemanticSearchResponse) HasResults() bool {
	return r != nil && len(r.Results) > 0
}

// TestResultItem records one canned query's run through the pipeline in batch
// self-test mode. Passed is true when the query returned results and the
// classifier's confidence exceeded 0.3.
type TestResultItem struct {
	Query            string      `json:"query"`
	ResultCount      int         `json:"result_count"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	TopScore         float64     `json:"top_score"`
	DetectedIntent   QueryIntent `json:"detected_intent"`
	Passed           bool        `json:"passed"`
	Error            string      `json:"error,omitempty"`
}
