package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/config"
)

// Serve runs the API until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	pipeline, err := BuildPipeline(ctx, cfg, stores, logger)
	if err != nil {
		return err
	}

	// training, when allowed, happens here and never inside a request
	if _, err := pipeline.Provisioner.Ensure(ctx); err != nil {
		if !errors.Is(err, classifier.ErrArtifactMissing) {
			return fmt.Errorf("failed to load classifier: %w", err)
		}
		logger.Warn("⚠️ Classifier artifacts missing, analyses will fail until `cvmatch train` runs", zap.Error(err))
	}

	server, err := BuildServer(cfg, stores, pipeline, logger)
	if err != nil {
		return err
	}

	if server.Worker != nil {
		server.Worker.Start(ctx)
		defer server.Worker.Stop()
	}

	go func() {
		<-ctx.Done()
		logger.Info("🛑 Shutting down server...")
		if err := server.HTTP.Shutdown(); err != nil {
			logger.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("🚀 Server starting", zap.String("addr", addr))

	if err := server.HTTP.Listen(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
