// Package classifier trains and runs the experience-sentence classifier: a random forest
// over two principal components of the sentence features plus a one-hot encoding of the
// sentence text.
package classifier

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/nlp"
	"digitalcook/cv-matcher/internal/outcome"
)

// ErrClassification marks a batch that could not be classified.
var ErrClassification = errors.New("classification failed")

// Artifacts is the fitted pair persisted between runs.
type Artifacts struct {
	Preprocessor *Preprocessor
	Forest       *Forest
}

type TrainOptions struct {
	Forest ForestOptions
}

// Train fits the preprocessing pipeline and the forest on ds. Callers denoise ds first.
func Train(ctx context.Context, ds Dataset, opts TrainOptions) (Artifacts, error) {
	if len(ds) < 2 {
		return Artifacts{}, fmt.Errorf("need at least 2 examples to train, got %d", len(ds))
	}
	if pos := ds.Positives(); pos == 0 || pos == len(ds) {
		return Artifacts{}, fmt.Errorf("training set needs both classes, got %d positives of %d", pos, len(ds))
	}

	pre, err := FitPreprocessor(ds)
	if err != nil {
		return Artifacts{}, fmt.Errorf("failed to fit preprocessor: %w", err)
	}

	rows := make([]Row, len(ds))
	labels := make([]bool, len(ds))
	for i, ex := range ds {
		rows[i] = pre.Transform(ex.Text, ex.Features)
		labels[i] = ex.Label
	}

	forest, err := FitForest(ctx, rows, labels, pre.Width(), opts.Forest)
	if err != nil {
		return Artifacts{}, err
	}

	return Artifacts{Preprocessor: pre, Forest: forest}, nil
}

// SaveArtifacts gob-encodes both artifacts into store.
func SaveArtifacts(ctx context.Context, store ArtifactStore, art Artifacts) error {
	blobs := map[string]any{
		PreprocessorArtifact: art.Preprocessor,
		ModelArtifact:        art.Forest,
	}
	for _, name := range []string{PreprocessorArtifact, ModelArtifact} {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(blobs[name]); err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := store.Save(ctx, name, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// LoadArtifacts reads both artifacts. It returns ErrArtifactMissing when either is absent.
func LoadArtifacts(ctx context.Context, store ArtifactStore) (Artifacts, error) {
	var art Artifacts

	pre, err := store.Load(ctx, PreprocessorArtifact)
	if err != nil {
		return art, err
	}
	model, err := store.Load(ctx, ModelArtifact)
	if err != nil {
		return art, err
	}

	art.Preprocessor = &Preprocessor{}
	if err := gob.NewDecoder(bytes.NewReader(pre)).Decode(art.Preprocessor); err != nil {
		return Artifacts{}, fmt.Errorf("failed to decode %s: %w", PreprocessorArtifact, err)
	}
	art.Forest = &Forest{}
	if err := gob.NewDecoder(bytes.NewReader(model)).Decode(art.Forest); err != nil {
		return Artifacts{}, fmt.Errorf("failed to decode %s: %w", ModelArtifact, err)
	}
	return art, nil
}

// Classifier is a loaded model. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	art      Artifacts
	features *nlp.FeatureExtractor
	logger   *zap.Logger
}

func New(art Artifacts, features *nlp.FeatureExtractor, logger *zap.Logger) *Classifier {
	return &Classifier{art: art, features: features, logger: logger}
}

// Classify returns the sentences predicted to describe work experience, in input order.
// Blank lines are ignored. Any failure degrades the whole batch to no sentences.
func (c *Classifier) Classify(ctx context.Context, sentences []string) (res outcome.Result[[]string]) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("❌ Classifier panicked", zap.Any("panic", r))
			res = outcome.Degrade[[]string](fmt.Errorf("%w: %v", ErrClassification, r))
		}
	}()

	if c.art.Preprocessor == nil || c.art.Forest == nil {
		return outcome.Degrade[[]string](fmt.Errorf("%w: classifier is not loaded", ErrClassification))
	}

	positives := make([]string, 0)
	for _, s := range sentences {
		if err := ctx.Err(); err != nil {
			return outcome.Degrade[[]string](fmt.Errorf("%w: %w", ErrClassification, err))
		}

		text := strings.TrimRight(s, "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		row := c.art.Preprocessor.Transform(text, c.features.Extract(ctx, text))
		if c.art.Forest.Predict(row) {
			positives = append(positives, text)
		}
	}

	c.logger.Debug("Classified sentences",
		zap.Int("sentences", len(sentences)),
		zap.Int("experiences", len(positives)),
	)
	return outcome.Success(positives)
}
