package main

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/app"
	"digitalcook/cv-matcher/internal/config"
	"digitalcook/cv-matcher/internal/logger"
	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/repositories"
	"digitalcook/cv-matcher/internal/services"
)

// Copies the Postgres offers into the Qdrant collection: active offers are embedded and
// upserted, the others are removed.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("🚀 Starting offer ingestion...")
	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	offerRepo := repositories.NewOfferRepository(db)

	geminiService, err := app.NewGemini(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatal("❌ Failed to initialize collection", zap.Error(err))
	}

	offers, err := offerRepo.ListAll(ctx)
	if err != nil {
		log.Fatal("❌ Failed to list offers", zap.Error(err))
	}

	var indexed, removed, failed int
	for i, offer := range offers {
		olog := log.With(zap.String("offer_id", offer.ID.String()), zap.String("title", offer.Title))

		if offer.Status != models.OfferActive {
			if err := qdrantService.DeleteOffer(ctx, offer.ID.String()); err != nil {
				olog.Warn("❌ Failed to remove offer", zap.Error(err))
				failed++
				continue
			}
			removed++
			continue
		}

		document := offer.Snapshot().Document()
		if strings.TrimSpace(document) == "" {
			olog.Warn("⚠️ Offer has no text, skipping")
			failed++
			continue
		}

		embedding, err := geminiService.GenerateEmbedding(ctx, document)
		if err != nil {
			olog.Warn("❌ Failed to generate embedding", zap.Error(err))
			failed++
			continue
		}

		if err := qdrantService.UpsertOffer(ctx, offer, embedding); err != nil {
			olog.Warn("❌ Failed to store offer", zap.Error(err))
			failed++
			continue
		}
		indexed++

		if (i+1)%10 == 0 || i == len(offers)-1 {
			log.Info("📊 Progress", zap.Int("done", i+1), zap.Int("total", len(offers)))
		}
	}

	log.Info("📊 Ingestion summary",
		zap.Int("indexed", indexed),
		zap.Int("removed", removed),
		zap.Int("failed", failed))

	if failed > 0 {
		log.Warn("⚠️ Some offers failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Info("✅ All offers ingested successfully!")
}
