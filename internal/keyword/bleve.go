// Package keyword provides the Bleve implementation of KeywordIndex.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/codescope/codescope/internal/models"
)

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// functionDoc is the flattened shape handed to Bleve; only searchable text
// fields are indexed.
type functionDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Doc       string `json:"doc"`
	Package   string `json:"package"`
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path builds
// an in-memory index, used by tests and one-shot CLI queries.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so identifier
	// fragments match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("signature", textFieldMapping)
	docMapping.AddFieldMappingsAt("doc", textFieldMapping)
	docMapping.AddFieldMappingsAt("package", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a function by id.
func (b *BleveIndex) Index(ctx context.Context, fn *models.Function) error {
	return b.index.Index(fn.ID, functionDoc{
		ID:        fn.ID,
		Name:      fn.Name,
		Signature: fn.Signature,
		Doc:       fn.Doc,
		Package:   fn.Package,
	})
}

// Delete removes a function from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Search runs a match query over the text fields and returns up to limit results.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	if limit <= 0 {
		limit = 10
	}
	matchQuery := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	results := make([]*KeywordResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, &KeywordResult{ID: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Count returns the number of indexed functions.
func (b *BleveIndex) Count() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
