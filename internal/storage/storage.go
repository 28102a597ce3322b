// Package storage persists function records, the active ANN configuration,
// and serialized index-stats snapshots.
package storage

import (
	"context"
	"time"

	"github.com/codescope/codescope/internal/models"
	"github.com/codescope/codescope/internal/vector"
)

// StatsSnapshot is a point-in-time capture of index statistics, persisted
// for later inspection by the CLI. The stats payload is stored opaquely.
type StatsSnapshot struct {
	ID        string       `json:"id"`
	Stats     vector.Stats `json:"stats"`
	CreatedAt time.Time    `json:"created_at"`
}

// Storage is the persistence boundary. It does not participate in search
// logic; vector structures are rebuilt in memory from the stored functions.
type Storage interface {
	SaveFunction(ctx context.Context, fn *models.Function) error
	GetFunction(ctx context.Context, id string) (*models.Function, error)
	ListFunctions(ctx context.Context) ([]*models.Function, error)
	DeleteFunction(ctx context.Context, id string) error
	CountFunctions(ctx context.Context) (int, error)

	SaveConfig(ctx context.Context, cfg vector.Config) error
	LoadConfig(ctx context.Context) (*vector.Config, error)

	SaveStatsSnapshot(ctx context.Context, stats vector.Stats) (*StatsSnapshot, error)
	ListStatsSnapshots(ctx context.Context, limit int) ([]*StatsSnapshot, error)

	Close() error
}
