package ingest

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentcommand/unisearch/internal/models"
)

// fileRefRe matches file names with a source or document extension
// mentioned in body text, including import paths and markdown links.
var fileRefRe = regexp.MustCompile(`\b[\w-]+\.(?:swift|go|py|js|jsx|ts|tsx|java|kt|rb|rs|c|h|m|mm|md|rst|yaml|yml|json|toml|sql|sh)\b`)

const (
	linkKindReference = "reference"
	linkKindBacklink  = "referenced-by"
)

// linkDocument rebuilds the outgoing link graph edges for doc by scanning
// its content for mentions of other documents. Each resolved mention gets a
// forward reference edge and a weaker backlink from the target.
func (idx *Indexer) linkDocument(ctx context.Context, doc *models.Document) error {
	if err := idx.store.DeleteLinksFor(ctx, doc.ID); err != nil {
		return err
	}
	refs := referenceCounts(doc)
	for name, count := range refs {
		targets, err := idx.store.FindDocumentsByName(ctx, name, 3)
		if err != nil {
			return err
		}
		for _, target := range targets {
			if target.ID == doc.ID {
				continue
			}
			weight := referenceWeight(count)
			if err := idx.store.UpsertLink(ctx, &models.DocumentLink{
				SourceID: doc.ID,
				TargetID: target.ID,
				Kind:     linkKindReference,
				Weight:   weight,
			}); err != nil {
				return err
			}
			if err := idx.store.UpsertLink(ctx, &models.DocumentLink{
				SourceID: target.ID,
				TargetID: doc.ID,
				Kind:     linkKindBacklink,
				Weight:   weight * 0.6,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// referenceCounts tallies file names mentioned in the document body,
// excluding the document's own name.
func referenceCounts(doc *models.Document) map[string]int {
	self := strings.ToLower(doc.Title)
	if doc.Path != "" {
		self = strings.ToLower(filepath.Base(doc.Path))
	}
	counts := make(map[string]int)
	for _, m := range fileRefRe.FindAllString(doc.Content, -1) {
		name := strings.ToLower(m)
		if name == self {
			continue
		}
		counts[name]++
	}
	return counts
}

// referenceWeight maps a mention count to a link weight in (0,1]. Repeated
// mentions strengthen the edge with quickly diminishing returns.
func referenceWeight(count int) float64 {
	if count > 4 {
		count = 4
	}
	return 0.4 + 0.15*float64(count)
}
