package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/embedding"
	"github.com/codescope/codescope/internal/keyword"
	"github.com/codescope/codescope/internal/search"
	"github.com/codescope/codescope/internal/storage"
	"github.com/codescope/codescope/internal/vector"
	"github.com/codescope/codescope/pkg/utils"
)

// App bundles the initialized components behind a single Close.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Storage      storage.Storage
	Embedder     embedding.Embedder
	KeywordIndex keyword.KeywordIndex
	Engine       *search.Engine
}

// openApp loads config, builds the logger, and wires storage, embedder,
// keyword index, ANN index and engine together. The ANN config persisted in
// storage takes precedence over the config file so that runtime updates made
// through the API survive restarts.
func openApp(ctx context.Context) (*App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := utils.NewLogger(cfg.Debug && !quiet)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	annCfg := cfg.ANN
	if saved, loadErr := store.LoadConfig(ctx); loadErr == nil && saved != nil {
		annCfg = *saved
		logger.Debug("using persisted index config", zap.String("algorithm", string(annCfg.Algorithm)))
	}

	vectorIndex, err := vector.NewIndex(annCfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initializing vector index: %w", err)
	}

	var embedder embedding.Embedder
	if os.Getenv("OPENAI_API_KEY") != "" {
		embedder, err = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			CacheSize:  cfg.Embedding.CacheSize,
		}, logger)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("initializing embedder: %w", err)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, using deterministic mock embeddings")
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("initializing keyword index: %w", err)
	}

	engine := search.NewEngine(store, embedder, vectorIndex, keywordIndex, &cfg.Search, logger)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Storage:      store,
		Embedder:     embedder,
		KeywordIndex: keywordIndex,
		Engine:       engine,
	}, nil
}

// Close releases all resources.
func (a *App) Close() {
	_ = a.KeywordIndex.Close()
	_ = a.Embedder.Close()
	_ = a.Storage.Close()
	_ = a.Logger.Sync()
}
