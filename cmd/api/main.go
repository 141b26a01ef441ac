package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/app"
	"digitalcook/cv-matcher/internal/config"
	"digitalcook/cv-matcher/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}
	defer lg.Sync()
	lg.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, lg); err != nil {
		lg.Fatal("❌ Server stopped", zap.Error(err))
	}
}
