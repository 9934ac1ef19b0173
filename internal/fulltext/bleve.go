// Package fulltext provides the Bleve-backed full-text document index.
package fulltext

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/agentcommand/unisearch/internal/models"
)

// Hit is one full-text match. Score is normalized to [0,1] relative to the
// best hit of the same search. Fragment is a highlighted excerpt when the
// index produced one.
type Hit struct {
	ID       string
	Score    float64
	Fragment string
}

// Index wraps a Bleve index over document title, path, and content.
type Index struct {
	index bleve.Index
}

// indexedDocument is the shape handed to Bleve; content-bearing fields only.
type indexedDocument struct {
	Title   string `json:"title"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// NewIndex creates or opens a Bleve index at path. An existing index is
// reused so unchanged documents are not re-indexed; remove the directory to
// force a rebuild after a mapping change.
func NewIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open full-text index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so identifier-like
	// terms match exactly; stemming mangles CamelCase fragments.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("path", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create full-text index: %w", err)
	}
	return &Index{index: index}, nil
}

// NewMemIndex creates an in-memory index, used by tests and the self-test harness.
func NewMemIndex() (*Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("path", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory index: %w", err)
	}
	return &Index{index: index}, nil
}

// Index indexes a document under its ID.
func (x *Index) Index(ctx context.Context, doc *models.Document) error {
	return x.index.Index(doc.ID, indexedDocument{
		Title:   doc.Title,
		Path:    doc.Path,
		Content: doc.Content,
	})
}

// Search runs a match query over title, path, and content, title matches
// boosted, and returns up to limit hits with scores normalized to the best hit.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]*Hit, error) {
	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	titleQuery.SetBoost(2.0)
	pathQuery := bleve.NewMatchQuery(query)
	pathQuery.SetField("path")
	pathQuery.SetBoost(1.5)
	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(titleQuery, pathQuery, contentQuery))
	req.Size = limit
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField("content")

	results, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}

	maxScore := 0.0
	for _, hit := range results.Hits {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	out := make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		h := &Hit{ID: hit.ID, Score: 1.0}
		if maxScore > 0 {
			h.Score = hit.Score / maxScore
		}
		if frags, ok := hit.Fragments["content"]; ok && len(frags) > 0 {
			h.Fragment = frags[0]
		}
		out[i] = h
	}
	return out, nil
}

// Delete removes a document from the index.
func (x *Index) Delete(ctx context.Context, id string) error {
	return x.index.Delete(id)
}

// DocCount returns the number of indexed documents.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

// Close closes the underlying index.
func (x *Index) Close() error {
	return x.index.Close()
}
