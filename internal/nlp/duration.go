package nlp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/outcome"
)

// ErrDateParse marks a line whose date expressions could not be searched.
var ErrDateParse = errors.New("date parse failed")

var (
	unitWords   = regexp.MustCompile(`(?i)\b(months?|years?|mos|yr|yrs|mois|an|ans)\b`)
	nowKeywords = regexp.MustCompile(`\b(present|today|now|aujourd'hui)\b`)
)

const presentLayout = "Jan 02, 2006"

// Estimator sums the experience years found line by line in a résumé.
type Estimator struct {
	searcher DateSearcher
	now      func() time.Time
	logger   *zap.Logger
}

type EstimatorOption func(*Estimator)

func WithSearcher(s DateSearcher) EstimatorOption {
	return func(e *Estimator) { e.searcher = s }
}

func WithClock(now func() time.Time) EstimatorOption {
	return func(e *Estimator) { e.now = now }
}

func NewEstimator(logger *zap.Logger, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		searcher: DefaultDateSearcher(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the total years rounded to 2 decimals. Each line is searched on its own;
// a line with fewer than two date mentions adds nothing, and only its two earliest mentions
// count. Lines whose search fails are skipped and the result is marked degraded.
func (e *Estimator) Estimate(ctx context.Context, text string) outcome.Result[float64] {
	now := e.now()

	var (
		total  float64
		failed []error
	)
	for i, line := range strings.Split(text, "\n") {
		if err := ctx.Err(); err != nil {
			return outcome.Fail[float64](err)
		}

		cleaned := CleanDurationLine(line, now)
		if strings.TrimSpace(cleaned) == "" {
			continue
		}

		dates, err := e.searcher.Search(cleaned, now)
		if err != nil {
			e.logger.Debug("Skipping line with unparseable dates", zap.Int("line", i+1), zap.Error(err))
			failed = append(failed, fmt.Errorf("%w: line %d: %w", ErrDateParse, i+1, err))
			continue
		}
		if len(dates) < 2 {
			continue
		}

		sortDates(dates)
		total += yearsBetween(dates[0], dates[1])
	}

	total = math.Round(total*100) / 100
	if len(failed) > 0 {
		return outcome.Partial(total, errors.Join(failed...))
	}
	return outcome.Success(total)
}

// CleanDurationLine prepares a line for date search: lower-cased, duration unit words
// removed, dots dropped, slashes and dashes turned into spaces, and "present"-like keywords
// replaced with now.
func CleanDurationLine(line string, now time.Time) string {
	line = strings.ToLower(strings.TrimRight(line, "\r"))
	line = unitWords.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, ".", "")
	line = strings.NewReplacer("/", " ", "-", " ").Replace(line)
	return nowKeywords.ReplaceAllString(line, now.Format(presentLayout))
}

func yearsBetween(start, end time.Time) float64 {
	return float64(end.Year()-start.Year()) + float64(end.Month()-start.Month())/12.0
}

// FormatDuration renders years as "<years> an(s) <months> mois". The plural only applies
// above one year, so 0 renders as "0 an 0 mois".
func FormatDuration(years float64) string {
	whole := int(years)
	months := int(math.RoundToEven((years - float64(whole)) * 12))

	unit := "an"
	if whole > 1 {
		unit = "ans"
	}
	return fmt.Sprintf("%d %s %d mois", whole, unit, months)
}
