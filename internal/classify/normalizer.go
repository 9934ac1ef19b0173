// Package classify builds normalized search queries and classifies their
// intent, complexity, and embedded entities.
package classify

import (
	"strings"
	"unicode"

	"github.com/agentcommand/unisearch/internal/models"
)

// stopwords are dropped from the semantic keyword set; they carry no
// retrieval signal on their own.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "do": true, "does": true, "for": true, "from": true,
	"how": true, "i": true, "in": true, "is": true, "it": true, "my": true,
	"of": true, "on": true, "or": true, "that": true, "the": true, "this": true,
	"to": true, "use": true, "what": true, "when": true, "where": true,
	"which": true, "who": true, "why": true, "with": true,
}

// Normalize trims surrounding whitespace from raw user input. An empty result
// means "clear", never a search.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// BuildSearchQuery constructs the immutable per-request SearchQuery from
// trimmed input. The caller guarantees trimmed is non-empty.
func BuildSearchQuery(trimmed string, mode models.SearchMode, limit int) models.SearchQuery {
	if mode == "" {
		mode = models.ModeHybrid
	}
	return models.SearchQuery{
		OriginalQuery:    trimmed,
		FTSQuery:         ToFTSQuery(trimmed),
		SemanticKeywords: SemanticKeywords(trimmed),
		DetectedLanguage: DetectLanguage(trimmed),
		Mode:             mode,
		Limit:            limit,
	}
}

// ToFTSQuery transforms raw input into the form handed to the full-text
// index: lowercased, edge punctuation stripped per token, quotes removed.
// Identifier-internal characters (_ - . /) are kept so "AppState.swift" and
// "internal/pipeline" survive as single terms.
func ToFTSQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		t := normalizeToken(f)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return strings.Join(terms, " ")
}

// SemanticKeywords returns the deduplicated, stopword-filtered terms of the
// query in original order, used to seed semantic expansion.
func SemanticKeywords(query string) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0, 4)
	for _, f := range strings.Fields(query) {
		t := normalizeToken(f)
		if t == "" || stopwords[t] || seen[t] {
			continue
		}
		seen[t] = true
		keywords = append(keywords, t)
	}
	return keywords
}

// normalizeToken lowercases a token and strips leading/trailing punctuation,
// keeping identifier-internal punctuation.
func normalizeToken(token string) string {
	token = strings.ToLower(token)
	return strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) && r != '-' && r != '_' && r != '.' && r != '/'
	})
}

// DetectLanguage classifies the query script. Any CJK rune makes the query
// CJK (mixed-script queries route through CJK-aware matching); pure
// latin/digit/punct is English; anything else is other.
func DetectLanguage(query string) models.QueryLanguage {
	sawLetter := false
	sawNonLatin := false
	for _, r := range query {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
			return models.LanguageCJK
		case unicode.IsLetter(r):
			sawLetter = true
			if r > unicode.MaxASCII && !unicode.In(r, unicode.Latin) {
				sawNonLatin = true
			}
		}
	}
	if sawLetter && sawNonLatin {
		return models.LanguageOther
	}
	return models.LanguageEnglish
}
