package models

// QueryLanguage is the detected script of a query.
type QueryLanguage string

const (
	// LanguageEnglish covers latin-script queries.
	LanguageEnglish QueryLanguage = "en"
	// LanguageCJK covers queries containing Chinese/Japanese/Korean runes.
	LanguageCJK QueryLanguage = "cjk"
	// LanguageOther covers everything else (cyrillic, arabic, mixed symbol).
	LanguageOther QueryLanguage = "other"
)

// SearchMode restricts which retrieval sources a search queries.
type SearchMode string

const (
	// ModeHybrid queries all sources (default).
	ModeHybrid SearchMode = "hybrid"
	// ModeRAGOnly queries only the full-text and relationship sources.
	ModeRAGOnly SearchMode = "rag"
	// ModeSemanticOnly queries only the entity and semantic-expansion sources.
	ModeSemanticOnly SearchMode = "semantic"
)

// SearchQuery is the immutable per-request value built once per dispatch.
// OriginalQuery is the trimmed user input; FTSQuery is the form handed to the
// full-text index; SemanticKeywords are stopword-filtered terms for expansion.
type SearchQuery struct {
	OriginalQuery    string        `json:"original_query"`
	FTSQuery         string        `json:"fts_query"`
	SemanticKeywords []string      `json:"semantic_keywords"`
	DetectedLanguage QueryLanguage `json:"detected_language"`
	Mode             SearchMode    `json:"mode,omitempty"`
	Limit            int           `json:"limit,omitempty"`
}

// IsEmpty reports whether the query carries no searchable text.
func (q *SearchQuery) IsEmpty() bool {
	return q == nil || q.OriginalQuery == ""
}

// QueryIntent is the primary purpose the classifier assigns to a query.
type QueryIntent string

const (
	IntentCodeSearch      QueryIntent = "code_search"
	IntentCodeFix         QueryIntent = "code_fix"
	IntentCodeExplain     QueryIntent = "code_explain"
	IntentFileNavigation  QueryIntent = "file_navigation"
	IntentDependencyQuery QueryIntent = "dependency_query"
	IntentCodeRefactor    QueryIntent = "code_refactor"
	IntentCodeGenerate    QueryIntent = "code_generate"
	IntentErrorDiagnosis  QueryIntent = "error_diagnosis"
	IntentGeneral         QueryIntent = "general"
)

// QueryComplexity buckets queries by structural complexity.
type QueryComplexity string

const (
	ComplexitySimple   QueryComplexity = "simple"
	ComplexityModerate QueryComplexity = "moderate"
	ComplexityComplex  QueryComplexity = "complex"
)

// EntityType classifies a span extracted from the query.
type EntityType string

const (
	EntityFileName      EntityType = "file_name"
	EntityFilePath      EntityType = "file_path"
	EntityClassName     EntityType = "class_name"
	EntityFunctionName  EntityType = "function_name"
	EntityVariableName  EntityType = "variable_name"
	EntityErrorMessage  EntityType = "error_message"
	EntityFrameworkName EntityType = "framework_name"
	EntityOther         EntityType = "other"
)

// QueryEntity is one extracted entity with its original span and confidence.
type QueryEntity struct {
	Type         EntityType `json:"type"`
	Value        string     `json:"value"`
	OriginalSpan string     `json:"original_span"`
	Confidence   float64    `json:"confidence"`
}

// QueryClassification is the classifier's verdict on a query. Confidence is
// always within [0,1] and ExtractedEntities is never nil (empty means none).
type QueryClassification struct {
	PrimaryIntent     QueryIntent     `json:"primary_intent"`
	Confidence        float64         `json:"confidence"`
	QueryComplexity   QueryComplexity `json:"query_complexity"`
	ExtractedEntities []QueryEntity   `json:"extracted_entities"`
}
