// Package keyword provides full-text search over function names, signatures, and docs.
package keyword

import (
	"context"

	"github.com/codescope/codescope/internal/models"
)

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// KeywordIndex indexes functions for full-text search.
type KeywordIndex interface {
	Index(ctx context.Context, fn *models.Function) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Count() (uint64, error)
	Close() error
}
