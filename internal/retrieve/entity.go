package retrieve

import (
	"context"

	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/pkg/utils"
)

// EntitySource looks extracted entity values up directly against document
// titles and paths. A query naming a file or class hits that document even
// when full-text relevance is diluted by the rest of the query.
type EntitySource struct {
	storage  storage.Storage
	perValue int
	topK     int
}

// NewEntitySource creates the entity-direct source.
func NewEntitySource(store storage.Storage, topK int) *EntitySource {
	return &EntitySource{storage: store, perValue: 5, topK: topK}
}

func (s *EntitySource) Name() models.ResultSource {
	return models.SourceEntityDirect
}

// lookupTypes are the entity types worth a direct title/path lookup. Error
// messages and framework names do not name documents.
var lookupTypes = map[models.EntityType]bool{
	models.EntityFileName:     true,
	models.EntityFilePath:     true,
	models.EntityClassName:    true,
	models.EntityFunctionName: true,
	models.EntityVariableName: true,
}

func (s *EntitySource) Retrieve(ctx context.Context, query models.SearchQuery, cls models.QueryClassification) ([]*models.SemanticSearchResult, error) {
	results := make([]*models.SemanticSearchResult, 0, 8)
	seen := make(map[string]bool)
	for _, entity := range cls.ExtractedEntities {
		if !lookupTypes[entity.Type] {
			continue
		}
		docs, err := s.storage.FindDocumentsByName(ctx, entity.Value, s.perValue)
		if err != nil {
			// One bad lookup should not drop the other entities.
			continue
		}
		for _, doc := range docs {
			if len(results) >= s.topK {
				return results, nil
			}
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			results = append(results, &models.SemanticSearchResult{
				ID:              "doc:" + doc.ID,
				Source:          models.SourceEntityDirect,
				RAGResult:       &models.RAGResult{Document: doc, Snippet: utils.Truncate(doc.Content, snippetLength)},
				ExplanationNote: "matched " + string(entity.Type) + " " + entity.Value,
			})
		}
	}
	return results, nil
}
