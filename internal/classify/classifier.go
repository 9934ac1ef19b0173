package classify

import (
	"strings"

	"github.com/agentcommand/unisearch/internal/models"
)

// Classifier derives intent, confidence, complexity, and entities from a
// normalized query string using keyword heuristics.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// intentCues maps an intent to the phrases that indicate it. Earlier intents
// in intentOrder win when cue hit counts tie.
var intentCues = map[models.QueryIntent][]string{
	models.IntentErrorDiagnosis: {
		"error", "panic", "exception", "crash", "stack trace", "fails",
		"failing", "broken", "why does", "diagnose",
	},
	models.IntentCodeFix: {
		"fix", "repair", "resolve", "bug", "patch", "workaround",
	},
	models.IntentCodeRefactor: {
		"refactor", "rename", "clean up", "cleanup", "restructure",
		"simplify", "extract method", "split up",
	},
	models.IntentCodeGenerate: {
		"generate", "scaffold", "write a", "create a", "implement",
		"add a", "boilerplate",
	},
	models.IntentCodeExplain: {
		"explain", "how does", "what does", "what is", "understand",
		"walk through", "describe",
	},
	models.IntentFileNavigation: {
		"where is", "locate", "open", "go to", "find file", "defined",
		"which file",
	},
	models.IntentDependencyQuery: {
		"depend", "depends on", "dependency", "import", "imports",
		"uses package", "requires", "which packages",
	},
	models.IntentCodeSearch: {
		"find", "search", "show", "list", "look for", "usages", "references",
	},
}

// intentOrder fixes cue evaluation order so classification is deterministic.
var intentOrder = []models.QueryIntent{
	models.IntentErrorDiagnosis,
	models.IntentCodeFix,
	models.IntentCodeRefactor,
	models.IntentCodeGenerate,
	models.IntentCodeExplain,
	models.IntentFileNavigation,
	models.IntentDependencyQuery,
	models.IntentCodeSearch,
}

// Classify derives the classification for a non-empty normalized query.
// Confidence is always within [0,1] and ExtractedEntities is never nil.
func (c *Classifier) Classify(query string) models.QueryClassification {
	lower := strings.ToLower(query)
	entities := ExtractEntities(query)

	intent, cueHits := c.detectIntent(lower, entities)
	confidence := c.confidence(intent, cueHits, entities, lower)

	return models.QueryClassification{
		PrimaryIntent:     intent,
		Confidence:        confidence,
		QueryComplexity:   c.complexity(query, entities),
		ExtractedEntities: entities,
	}
}

// detectIntent returns the intent with the most cue hits, with entity shape
// as a tie-breaker: a query that is only a file reference is navigation, and
// bare code identifiers default to code search.
func (c *Classifier) detectIntent(lower string, entities []models.QueryEntity) (models.QueryIntent, int) {
	best := models.IntentGeneral
	bestHits := 0
	for _, intent := range intentOrder {
		hits := 0
		for _, cue := range intentCues[intent] {
			if strings.Contains(lower, cue) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = intent, hits
		}
	}
	if bestHits > 0 {
		return best, bestHits
	}

	// No verbal cue: fall back on the entity shape.
	hasFileRef := false
	hasCodeRef := false
	for _, e := range entities {
		switch e.Type {
		case models.EntityFileName, models.EntityFilePath:
			hasFileRef = true
		case models.EntityClassName, models.EntityFunctionName, models.EntityVariableName:
			hasCodeRef = true
		case models.EntityErrorMessage:
			return models.IntentErrorDiagnosis, 0
		}
	}
	if hasFileRef && !hasCodeRef {
		return models.IntentFileNavigation, 0
	}
	if hasCodeRef || hasFileRef {
		return models.IntentCodeSearch, 0
	}
	return models.IntentGeneral, 0
}

// confidence scores how sure the classifier is, in [0,1]. Cue hits and
// supporting entities both raise it; a bare fallback stays low.
func (c *Classifier) confidence(intent models.QueryIntent, cueHits int, entities []models.QueryEntity, lower string) float64 {
	conf := 0.25
	if cueHits > 0 {
		conf = 0.45 + 0.15*float64(cueHits)
	} else if intent != models.IntentGeneral {
		// Entity-shape fallback: moderately confident.
		conf = 0.5
	}
	for _, e := range entities {
		conf += 0.1 * e.Confidence
	}
	// Very short queries with no recognized structure stay uncertain.
	if len(strings.Fields(lower)) == 1 && len(entities) == 0 {
		conf = 0.2
	}
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

// complexity buckets a query by term count, entity count, and operators.
func (c *Classifier) complexity(query string, entities []models.QueryEntity) models.QueryComplexity {
	terms := len(strings.Fields(query))
	score := terms
	score += 2 * len(entities)
	if strings.ContainsAny(query, "\"'") {
		score += 2
	}
	switch {
	case score <= 3:
		return models.ComplexitySimple
	case score <= 8:
		return models.ComplexityModerate
	default:
		return models.ComplexityComplex
	}
}

// SuggestPrompt renders an optional prompt suggestion for downstream agents
// based on the classified intent. Empty when there is nothing useful to say.
func SuggestPrompt(classification models.QueryClassification, query string) string {
	switch classification.PrimaryIntent {
	case models.IntentCodeFix, models.IntentErrorDiagnosis:
		return "Investigate and fix: " + query
	case models.IntentCodeExplain:
		return "Explain in detail: " + query
	case models.IntentCodeGenerate:
		return "Implement: " + query
	case models.IntentCodeRefactor:
		return "Refactor: " + query
	default:
		return ""
	}
}
