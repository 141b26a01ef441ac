// Package app wires configuration into the running components shared by the API server
// and the command line.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/config"
	"digitalcook/cv-matcher/internal/handlers"
	"digitalcook/cv-matcher/internal/matching"
	"digitalcook/cv-matcher/internal/nlp"
	"digitalcook/cv-matcher/internal/repositories"
	"digitalcook/cv-matcher/internal/services"
)

const skillCacheTTL = 10 * time.Minute

// Stores holds the opened databases and the offer source chosen by configuration.
type Stores struct {
	DB     *gorm.DB
	SQLite *sql.DB
	Offers repositories.OfferSource
	Writer repositories.OfferWriter // nil for the qdrant backend
	Qdrant services.QdrantService
}

func (s *Stores) Close() {
	if s.SQLite != nil {
		s.SQLite.Close()
	}
	if s.DB != nil {
		if db, err := s.DB.DB(); err == nil {
			db.Close()
		}
	}
}

// OpenStores connects the databases the configuration needs and selects the offer source.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{}

	if cfg.NeedsPostgres() {
		db, err := config.InitDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		stores.DB = db
	}

	switch cfg.Offers.Backend {
	case "postgres":
		repo := repositories.NewOfferRepository(stores.DB)
		stores.Offers, stores.Writer = repo, repo
	case "sqlite":
		db, err := config.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores.SQLite = db
		store := repositories.NewSQLiteOfferStore(db)
		if err := store.Migrate(ctx); err != nil {
			stores.Close()
			return nil, err
		}
		stores.Offers, stores.Writer = store, store
	case "qdrant":
		q, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, logger)
		if err != nil {
			stores.Close()
			return nil, err
		}
		if err := q.InitCollection(ctx); err != nil {
			stores.Close()
			return nil, err
		}
		stores.Qdrant = q
		stores.Offers = q
	}

	logger.Info("✅ Offer store ready", zap.String("backend", cfg.Offers.Backend))
	return stores, nil
}

// Pipeline is the analysis stack: extractors, classifier provisioning and the analyzer.
type Pipeline struct {
	Provisioner *classifier.Provisioner
	Features    *nlp.FeatureExtractor
	Analyzer    *services.Analyzer
	PDFParser   services.PDFParserService
}

func artifactStore(cfg *config.Config, stores *Stores) classifier.ArtifactStore {
	if cfg.Model.ArtifactBackend == "database" {
		return repositories.NewArtifactRepository(stores.DB)
	}
	return classifier.NewFileStore(cfg.Model.ArtifactDir)
}

// BuildPipeline loads the skill taxonomy and assembles the analyzer. It does not load
// or train the classifier.
func BuildPipeline(ctx context.Context, cfg *config.Config, stores *Stores, logger *zap.Logger) (*Pipeline, error) {
	taxonomy, err := nlp.LoadTaxonomy(cfg.Model.SkillDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill taxonomy: %w", err)
	}

	skills := nlp.NewSkillExtractor(taxonomy, logger, skillCacheTTL)
	features := nlp.NewFeatureExtractor(nil, skills)

	provisioner := classifier.NewProvisioner(artifactStore(cfg, stores), features, classifier.ProvisionerConfig{
		DatasetPath:    cfg.Model.DatasetPath,
		TrainOnMissing: cfg.Model.TrainOnMissing,
		Train: classifier.TrainOptions{Forest: classifier.ForestOptions{
			Trees: cfg.Model.Trees,
			Seed:  cfg.Model.Seed,
		}},
	}, logger)

	translator, err := buildTranslator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pdfParser := services.NewPDFParserService()
	scorer := matching.NewScorer(matching.Weights{
		Text:       cfg.Matching.WeightText,
		Skills:     cfg.Matching.WeightSkills,
		Languages:  cfg.Matching.WeightLanguages,
		Experience: cfg.Matching.WeightExperience,
	})

	analyzer := services.NewAnalyzer(services.AnalyzerDeps{
		Classifiers: services.FromProvisioner(provisioner),
		Skills:      skills,
		Durations:   nlp.NewEstimator(logger),
		Translator:  translator,
		Offers:      stores.Offers,
		Scorer:      scorer,
		PDFParser:   pdfParser,
		Rank: matching.RankOptions{
			Threshold: cfg.Matching.Threshold,
			Limit:     cfg.Matching.Shortlist,
		},
	}, logger)

	return &Pipeline{
		Provisioner: provisioner,
		Features:    features,
		Analyzer:    analyzer,
		PDFParser:   pdfParser,
	}, nil
}

func buildTranslator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.Translator, error) {
	if !cfg.Translation.Enabled {
		return services.NoopTranslator{}, nil
	}

	gemini, err := NewGemini(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("✅ Translation enabled", zap.String("target", cfg.Translation.Target))

	return services.NewGeminiTranslator(gemini, services.TranslatorOptions{
		Target:         cfg.Translation.Target,
		RequestsPerSec: cfg.Translation.RequestsPerSec,
		Burst:          cfg.Translation.Burst,
		MaxRetries:     cfg.Gemini.MaxRetries,
	}, logger), nil
}

func NewGemini(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.GeminiService, error) {
	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		EmbedModel: cfg.Gemini.EmbedModel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
	}
	return gemini, nil
}

// Server is the HTTP API with its optional background worker.
type Server struct {
	HTTP   *fiber.App
	Worker services.Worker
}

// BuildServer mounts the handlers. The asynchronous endpoints need Postgres and are left
// out without it.
func BuildServer(cfg *config.Config, stores *Stores, pipeline *Pipeline, logger *zap.Logger) (*Server, error) {
	storage := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storage.EnsureUploadDir(); err != nil {
		return nil, err
	}

	h := handlers.Handlers{
		Analyse: handlers.NewAnalyseHandler(pipeline.Analyzer, storage, logger),
		Offers:  handlers.NewOfferHandler(stores.Offers, storage, pipeline.PDFParser, cfg.Matching.Shortlist, logger),
	}

	server := &Server{}
	if stores.DB != nil {
		analysisRepo := repositories.NewAnalysisRepository(stores.DB)
		jobs := services.NewAnalysisJobService(analysisRepo, pipeline.Analyzer, logger)
		server.Worker = services.NewWorker(analysisRepo, jobs, services.WorkerOptions{
			Concurrency:  cfg.Worker.Concurrency,
			PollInterval: cfg.Worker.PollInterval,
		}, logger)
		h.Analyses = handlers.NewAnalysisHandler(analysisRepo, storage, server.Worker, logger)
		h.Results = handlers.NewResultHandler(analysisRepo)
	} else {
		logger.Warn("⚠️ No Postgres configured, asynchronous analyses are disabled")
	}

	server.HTTP = handlers.NewApp(h, handlers.AppOptions{
		BodyLimit: int(cfg.Storage.MaxFileSize) * 4,
		AccessLog: cfg.Server.Env == "development",
	})
	return server, nil
}
