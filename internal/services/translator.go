package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"digitalcook/cv-matcher/internal/outcome"
)

// Translator translates experience sentences. Sentences it cannot translate are returned
// unchanged and the result is degraded.
type Translator interface {
	Translate(ctx context.Context, sentences []string) outcome.Result[[]string]
}

// NoopTranslator returns sentences as they are.
type NoopTranslator struct{}

func (NoopTranslator) Translate(_ context.Context, sentences []string) outcome.Result[[]string] {
	return outcome.Success(append([]string(nil), sentences...))
}

type TranslatorOptions struct {
	Target         string
	RequestsPerSec float64
	Burst          int
	MaxRetries     int
}

type GeminiTranslator struct {
	gemini  GeminiService
	prompts *PromptBuilder
	target  string
	retries int
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewGeminiTranslator(gemini GeminiService, opts TranslatorOptions, logger *zap.Logger) *GeminiTranslator {
	if opts.Target == "" {
		opts.Target = "fr"
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini-translation",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("🔌 Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &GeminiTranslator{
		gemini:  gemini,
		prompts: NewPromptBuilder(),
		target:  strings.ToLower(opts.Target),
		retries: opts.MaxRetries,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		breaker: breaker,
		logger:  logger,
	}
}

// Translate implements Translator.
func (t *GeminiTranslator) Translate(ctx context.Context, sentences []string) outcome.Result[[]string] {
	translated := make([]string, len(sentences))
	var errs []error

	for i, sentence := range sentences {
		translated[i] = sentence
		if strings.TrimSpace(sentence) == "" || t.inTarget(sentence) {
			continue
		}

		text, err := t.translate(ctx, sentence)
		if err != nil {
			errs = append(errs, fmt.Errorf("sentence %d: %w", i+1, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		translated[i] = text
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrTranslation, errors.Join(errs...))
		t.logger.Warn("⚠️ Some sentences were not translated", zap.Int("failed", len(errs)), zap.Error(err))
		return outcome.Partial(translated, err)
	}
	return outcome.Success(translated)
}

func (t *GeminiTranslator) translate(ctx context.Context, sentence string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	res, err := t.breaker.Execute(func() (interface{}, error) {
		return t.gemini.GenerateTextWithRetry(ctx, t.prompts.BuildTranslationPrompt(sentence, t.target), 0, t.retries)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (t *GeminiTranslator) inTarget(sentence string) bool {
	info := whatlanggo.Detect(sentence)
	return info.IsReliable() && info.Lang.Iso6391() == t.target
}
