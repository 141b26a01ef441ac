package nlp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/outcome"
)

// ErrSkillAnnotation marks a failure inside the skill annotator.
var ErrSkillAnnotation = errors.New("skill annotation failed")

// SkillExtractor turns free text into a normalized, sorted set of skill phrases.
type SkillExtractor struct {
	annotator Annotator
	cache     *cache.Cache
	logger    *zap.Logger
}

func NewSkillExtractor(annotator Annotator, logger *zap.Logger, ttl time.Duration) *SkillExtractor {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SkillExtractor{
		annotator: annotator,
		cache:     cache.New(ttl, 2*ttl),
		logger:    logger,
	}
}

// Extract never propagates annotator errors: they come back as a degraded result with an
// empty set.
func (e *SkillExtractor) Extract(ctx context.Context, text string) outcome.Result[[]string] {
	key := NormalizeText(text)
	if key == "" {
		return outcome.Success([]string{})
	}

	if cached, ok := e.cache.Get(key); ok {
		return outcome.Success(cached.([]string))
	}

	ann, err := e.annotate(ctx, text)
	if err != nil {
		e.logger.Warn("⚠️ Skill annotation failed", zap.Error(err))
		return outcome.Degrade[[]string](fmt.Errorf("%w: %w", ErrSkillAnnotation, err))
	}

	values := make([]string, 0, len(ann.FullMatches)+len(ann.NgramScored))
	for _, m := range ann.FullMatches {
		values = append(values, m.Value)
	}
	for _, m := range ann.NgramScored {
		values = append(values, m.Value)
	}
	skills := StringSet(values, NormalizeSkill)

	e.cache.Set(key, skills, cache.DefaultExpiration)
	return outcome.Success(skills)
}

func (e *SkillExtractor) annotate(ctx context.Context, text string) (ann Annotation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("annotator panic: %v", r)
		}
	}()
	return e.annotator.Annotate(ctx, text)
}
