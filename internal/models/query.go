package models

import "fmt"

// SearchQuery represents a search request over the indexed functions.
type SearchQuery struct {
	Query          string  `json:"query"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
	KeywordWeight  float64 `json:"keyword_weight,omitempty"`
	SemanticWeight float64 `json:"semantic_weight,omitempty"`
	MinScore       float64 `json:"min_score,omitempty"`
	AdaptiveCutoff bool    `json:"adaptive_cutoff,omitempty"`
}

// Validate ensures the query has valid fields and sets defaults.
// Returns an error if the query text is empty; otherwise normalizes the limit
// and enables both search modes when neither weight is set.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.KeywordWeight == 0 && q.SemanticWeight == 0 {
		q.KeywordWeight = 0.3
		q.SemanticWeight = 0.7
	}
	return nil
}
