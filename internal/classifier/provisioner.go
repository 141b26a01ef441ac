package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/nlp"
)

// Provisioner loads the classifier once and, when allowed, trains it if no artifacts exist.
// Ensure is serialized so concurrent callers never train twice.
type Provisioner struct {
	mu sync.Mutex

	store          ArtifactStore
	features       *nlp.FeatureExtractor
	datasetPath    string
	trainOnMissing bool
	opts           TrainOptions
	logger         *zap.Logger

	loaded *Classifier
}

type ProvisionerConfig struct {
	DatasetPath    string
	TrainOnMissing bool
	Train          TrainOptions
}

func NewProvisioner(store ArtifactStore, features *nlp.FeatureExtractor, cfg ProvisionerConfig, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		store:          store,
		features:       features,
		datasetPath:    cfg.DatasetPath,
		trainOnMissing: cfg.TrainOnMissing,
		opts:           cfg.Train,
		logger:         logger,
	}
}

// Ensure returns the loaded classifier. Without TrainOnMissing a missing artifact fails
// with ErrArtifactMissing.
func (p *Provisioner) Ensure(ctx context.Context) (*Classifier, error) {
	return p.load(ctx, p.trainOnMissing)
}

// Load returns the loaded classifier and never trains. Request paths use it.
func (p *Provisioner) Load(ctx context.Context) (*Classifier, error) {
	return p.load(ctx, false)
}

func (p *Provisioner) load(ctx context.Context, trainOnMissing bool) (*Classifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded != nil {
		return p.loaded, nil
	}

	art, err := LoadArtifacts(ctx, p.store)
	switch {
	case err == nil:
		p.logger.Info("✅ Classifier artifacts loaded")
	case errors.Is(err, ErrArtifactMissing) && trainOnMissing:
		p.logger.Warn("⚠️ Classifier artifacts missing, training", zap.String("dataset", p.datasetPath))
		art, err = p.train(ctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	p.loaded = New(art, p.features, p.logger)
	return p.loaded, nil
}

// Train always retrains from the dataset, saves the artifacts, and swaps the loaded model.
func (p *Provisioner) Train(ctx context.Context) (*Classifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	art, err := p.train(ctx)
	if err != nil {
		return nil, err
	}
	p.loaded = New(art, p.features, p.logger)
	return p.loaded, nil
}

func (p *Provisioner) train(ctx context.Context) (Artifacts, error) {
	if p.datasetPath == "" {
		return Artifacts{}, fmt.Errorf("%w: no training dataset configured", ErrArtifactMissing)
	}

	start := time.Now()
	ds, err := LoadDataset(ctx, p.datasetPath, p.features)
	if err != nil {
		return Artifacts{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	clean := Denoise(ds)
	p.logger.Info("📚 Training dataset loaded",
		zap.Int("rows", len(ds)),
		zap.Int("kept", len(clean)),
		zap.Int("positives", clean.Positives()),
	)

	art, err := Train(ctx, clean, p.opts)
	if err != nil {
		return Artifacts{}, fmt.Errorf("failed to train classifier: %w", err)
	}
	if err := SaveArtifacts(ctx, p.store, art); err != nil {
		return Artifacts{}, fmt.Errorf("failed to save classifier: %w", err)
	}

	p.logger.Info("✅ Classifier trained",
		zap.Int("trees", len(art.Forest.Trees)),
		zap.Duration("took", time.Since(start)),
	)
	return art, nil
}
