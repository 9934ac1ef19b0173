package classify

import (
	"regexp"
	"strings"

	"github.com/agentcommand/unisearch/internal/models"
)

var (
	// fileNameRe matches bare file names with a known source/document extension.
	fileNameRe = regexp.MustCompile(`\b[\w.-]+\.(swift|go|py|js|jsx|ts|tsx|java|kt|rb|rs|c|cc|cpp|h|hpp|m|mm|md|rst|yaml|yml|json|toml|txt|sh|sql)\b`)
	// filePathRe matches slash-separated paths (with or without extension).
	filePathRe = regexp.MustCompile(`\b[\w.-]+(?:/[\w.-]+)+\b`)
	// classNameRe matches UpperCamelCase identifiers with at least two humps.
	classNameRe = regexp.MustCompile(`\b[A-Z][a-z0-9]+(?:[A-Z][a-zA-Z0-9]*)+\b`)
	// funcCallRe matches identifiers written with call parens, e.g. "refresh()".
	funcCallRe = regexp.MustCompile(`\b([a-zA-Z_][\w.]*)\(\)`)
	// lowerCamelRe matches lowerCamelCase identifiers (method/variable style).
	lowerCamelRe = regexp.MustCompile(`\b[a-z]+(?:[A-Z][a-zA-Z0-9]*)+\b`)
	// snakeCaseRe matches snake_case identifiers.
	snakeCaseRe = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+\b`)
	// errorSpanRe matches an error phrase and its immediate context.
	errorSpanRe = regexp.MustCompile(`(?i)\b(error|panic|exception|crash|fatal)\b[:\s]*[^.,;!?]{0,60}`)
)

// frameworkNames are recognized framework/tool names; lookup is lowercased.
var frameworkNames = map[string]bool{
	"swiftui": true, "combine": true, "uikit": true, "appkit": true,
	"react": true, "vue": true, "django": true, "flask": true, "rails": true,
	"docker": true, "kubernetes": true, "git": true, "xcode": true,
	"gin": true, "chi": true, "bleve": true, "sqlite": true, "postgres": true,
	"redis": true, "kafka": true, "grpc": true, "graphql": true,
}

// ExtractEntities extracts typed entities from the query in order of
// appearance. The returned slice is never nil; each entity carries the
// original span it was derived from and a per-type confidence.
func ExtractEntities(query string) []models.QueryEntity {
	entities := []models.QueryEntity{}
	taken := make([]span, 0, 8)

	collect := func(re *regexp.Regexp, typ models.EntityType, conf float64, value func(m []int) string) {
		for _, m := range re.FindAllStringSubmatchIndex(query, -1) {
			s := span{start: m[0], end: m[1]}
			if overlapsAny(s, taken) {
				continue
			}
			raw := query[m[0]:m[1]]
			// Known framework names like SwiftUI look like class names;
			// leave them for the framework pass.
			if frameworkNames[strings.ToLower(raw)] {
				continue
			}
			taken = append(taken, s)
			entities = append(entities, models.QueryEntity{
				Type:         typ,
				Value:        value(m),
				OriginalSpan: raw,
				Confidence:   conf,
			})
		}
	}

	full := func(m []int) string { return query[m[0]:m[1]] }

	// Order matters: more specific shapes claim their spans first so a path
	// is not re-reported as a file name, a file name not as a class, etc.
	collect(filePathRe, models.EntityFilePath, 0.9, full)
	collect(fileNameRe, models.EntityFileName, 0.9, full)
	collect(funcCallRe, models.EntityFunctionName, 0.85, func(m []int) string { return query[m[2]:m[3]] })
	collect(errorSpanRe, models.EntityErrorMessage, 0.6, full)
	collect(classNameRe, models.EntityClassName, 0.7, full)
	collect(lowerCamelRe, models.EntityFunctionName, 0.55, full)
	collect(snakeCaseRe, models.EntityVariableName, 0.55, full)

	// Framework names are plain words, matched against the known set.
	for _, f := range strings.Fields(query) {
		w := strings.ToLower(strings.Trim(f, ".,!?\"'"))
		if !frameworkNames[w] {
			continue
		}
		idx := strings.Index(strings.ToLower(query), w)
		s := span{start: idx, end: idx + len(w)}
		if overlapsAny(s, taken) {
			continue
		}
		taken = append(taken, s)
		entities = append(entities, models.QueryEntity{
			Type:         models.EntityFrameworkName,
			Value:        w,
			OriginalSpan: f,
			Confidence:   0.8,
		})
	}

	// Restore appearance order across the per-type passes.
	sortEntitiesBySpan(entities, query)
	return entities
}

type span struct{ start, end int }

func overlapsAny(s span, taken []span) bool {
	for _, t := range taken {
		if s.start < t.end && t.start < s.end {
			return true
		}
	}
	return false
}

// sortEntitiesBySpan orders entities by the first occurrence of their span in
// the query. Insertion sort keeps equal positions stable.
func sortEntitiesBySpan(entities []models.QueryEntity, query string) {
	pos := func(e models.QueryEntity) int {
		if i := strings.Index(query, e.OriginalSpan); i >= 0 {
			return i
		}
		return len(query)
	}
	for i := 1; i < len(entities); i++ {
		for j := i; j > 0 && pos(entities[j]) < pos(entities[j-1]); j-- {
			entities[j], entities[j-1] = entities[j-1], entities[j]
		}
	}
}
