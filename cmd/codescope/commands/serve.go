package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/server"
	"github.com/codescope/codescope/internal/watcher"
)

var serveRebuild bool

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search server",
		Long: `Start the codescope HTTP API.

The server exposes search, function listing, index stats and live
index reconfiguration. The config file is watched while the server
runs; changes to the ann section are applied without a restart.`,
		RunE: runServe,
	}

	cmd.Flags().BoolVar(&serveRebuild, "rebuild", true, "Rebuild the search indices from storage on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	logger := app.Logger

	if serveRebuild {
		if err := app.Engine.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuilding indices: %w", err)
		}
	}

	w := watcher.NewConfigWatcher(configPath, func(path string) {
		reloaded, loadErr := config.Load(path)
		if loadErr != nil {
			logger.Warn("config reload failed", zap.String("path", path), zap.Error(loadErr))
			return
		}
		if updateErr := app.Engine.UpdateConfig(context.Background(), reloaded.ANN); updateErr != nil {
			logger.Warn("index reconfigure failed", zap.Error(updateErr))
			return
		}
		logger.Info("index reconfigured from config file",
			zap.String("algorithm", string(reloaded.ANN.Algorithm)))
	}, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer w.Stop()
	}

	srv := server.NewServer(app.Engine, app.Storage, &app.Config.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("server started",
		zap.String("host", app.Config.Server.Host),
		zap.Int("port", app.Config.Server.Port))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
