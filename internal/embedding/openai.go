package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/codescope/codescope/pkg/utils"
)

// OpenAIEmbedder calls the OpenAI embeddings API. Results are L2-normalized
// and cached by source text, so repeated indexing of unchanged functions
// costs no API calls.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	cache      *EmbeddingCache
	logger     *zap.Logger
}

// OpenAIConfig configures the remote embedder.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	CacheSize  int
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API.
func NewOpenAIEmbedder(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.SmallEmbedding3
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = 1536
	}
	cacheSize := cfg.CacheSize
	if cacheSize == 0 {
		cacheSize = 10000
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		dimensions: dims,
		cache:      NewEmbeddingCache(cacheSize),
		logger:     logger,
	}, nil
}

// Embed returns the embedding for text, from cache when possible.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in one API request. Cached texts are served
// locally; only misses go to the API.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	var misses []string
	var missIdx []int
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			embeddings[i] = cached
			continue
		}
		misses = append(misses, text)
		missIdx = append(missIdx, i)
	}
	if len(misses) == 0 {
		return embeddings, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      misses,
		Model:      e.model,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(misses) {
		return nil, fmt.Errorf("embedding response has %d items, expected %d", len(resp.Data), len(misses))
	}
	for j, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		copy(vec, item.Embedding)
		utils.NormalizeL2(vec)
		e.cache.Set(misses[j], vec)
		embeddings[missIdx[j]] = vec
	}
	e.logger.Debug("embedded batch",
		zap.Int("requested", len(texts)),
		zap.Int("api_calls", len(misses)))
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources needing release.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
