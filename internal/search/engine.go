// Package search provides the main hybrid search engine over indexed functions.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/embedding"
	"github.com/codescope/codescope/internal/keyword"
	"github.com/codescope/codescope/internal/models"
	"github.com/codescope/codescope/internal/storage"
	"github.com/codescope/codescope/internal/vector"
)

// Engine runs hybrid (keyword + semantic) search over the function corpus.
// The vector index performs no internal locking, so the engine serializes
// access to it; keyword and storage lookups run concurrently with each other.
type Engine struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	keywordIndex keyword.KeywordIndex
	config       *config.SearchConfig
	logger       *zap.Logger

	mu          sync.Mutex
	vectorIndex vector.Index
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(
	store storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.KeywordIndex,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		storage:      store,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		config:       cfg,
		logger:       logger,
	}
}

// Rebuild re-indexes every stored function: embeddings are computed (cached
// texts cost no API calls), the vector index is fully rebuilt, and the
// keyword index is refreshed.
func (e *Engine) Rebuild(ctx context.Context) error {
	fns, err := e.storage.ListFunctions(ctx)
	if err != nil {
		return fmt.Errorf("list functions: %w", err)
	}
	texts := make([]string, len(fns))
	for i, fn := range fns {
		texts[i] = fn.EmbeddingText()
	}
	vecs, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed functions: %w", err)
	}
	embeddings := make([]vector.Embedding, len(fns))
	for i, fn := range fns {
		embeddings[i] = vector.Embedding{
			ID:         fn.ID,
			SemanticID: fn.SemanticID(),
			Vector:     vecs[i],
		}
		if err := e.keywordIndex.Index(ctx, fn); err != nil {
			return fmt.Errorf("keyword index %s: %w", fn.ID, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	if err := e.vectorIndex.Build(embeddings); err != nil {
		return fmt.Errorf("build vector index: %w", err)
	}
	e.logger.Info("index rebuilt",
		zap.Int("functions", len(fns)),
		zap.Duration("build_time", time.Since(start)))
	return nil
}

// Search runs hybrid search and returns function-level results.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []vector.SearchResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if query.KeywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.keywordIndex.Search(ctx, query.Query, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	if query.SemanticWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queryEmbedding, err := e.embedder.Embed(ctx, query.Query)
			if err != nil {
				errChan <- fmt.Errorf("embedding failed: %w", err)
				return
			}
			results, err := e.searchVector(queryEmbedding, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("vector search failed: %w", err)
				return
			}
			semanticResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	if query.AdaptiveCutoff {
		semanticResults = vector.RankBySimilarity(semanticResults, true)
	}
	keywordScores := NormalizeKeywordScores(keywordResults)
	semanticScores := NormalizeSemanticScores(semanticResults)
	fusedResults := Fuse(keywordScores, semanticScores, query.KeywordWeight, query.SemanticWeight)

	if query.MinScore > 0 {
		filtered := fusedResults[:0]
		for _, r := range fusedResults {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fusedResults = filtered
	}

	start := query.Offset
	end := query.Offset + query.Limit
	if start > len(fusedResults) {
		start = len(fusedResults)
	}
	if end > len(fusedResults) {
		end = len(fusedResults)
	}
	pagedResults := fusedResults[start:end]

	response := &models.SearchResponse{
		Results:   make([]*models.SearchResult, 0, len(pagedResults)),
		Total:     len(fusedResults),
		QueryTime: time.Since(startTime).Milliseconds(),
		Query:     query.Query,
	}
	for i, fused := range pagedResults {
		fn, err := e.storage.GetFunction(ctx, fused.FunctionID)
		if err != nil {
			e.logger.Warn("result function missing from storage", zap.String("id", fused.FunctionID))
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			Function:      fn,
			Score:         fused.Score,
			KeywordScore:  fused.KeywordScore,
			SemanticScore: fused.SemanticScore,
			Rank:          start + i + 1,
		})
	}
	return response, nil
}

func (e *Engine) searchVector(query []float32, k int) ([]vector.SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vectorIndex.Search(query, k)
}

// UpdateConfig swaps the ANN configuration on the live index and persists it.
// The index clears its result cache and reseeds only when the config changed.
func (e *Engine) UpdateConfig(ctx context.Context, cfg vector.Config) error {
	e.mu.Lock()
	if err := e.vectorIndex.UpdateConfig(cfg); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	if err := e.storage.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("persist config: %w", err)
	}
	e.logger.Info("ann config updated", zap.String("algorithm", string(cfg.Algorithm)))
	return nil
}

// IndexStats returns the vector index's structural metrics.
func (e *Engine) IndexStats() vector.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vectorIndex.Stats()
}

// SnapshotStats captures the current index stats into storage for later
// inspection.
func (e *Engine) SnapshotStats(ctx context.Context) (*storage.StatsSnapshot, error) {
	return e.storage.SaveStatsSnapshot(ctx, e.IndexStats())
}
