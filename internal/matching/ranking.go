package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"digitalcook/cv-matcher/internal/models"
)

const (
	DefaultThreshold = 0.28
	DefaultShortlist = 4
)

// RankOptions controls filtering and truncation. Only offers scoring strictly above
// Threshold are kept. Limit <= 0 keeps every retained offer in input order.
type RankOptions struct {
	Threshold float64
	Limit     int
	Workers   int
}

func DefaultRankOptions() RankOptions {
	return RankOptions{Threshold: DefaultThreshold, Limit: DefaultShortlist}
}

// Ranked is a retained offer with its score.
type Ranked struct {
	Offer models.OfferSnapshot
	Score models.MatchScore
}

// Rank scores every offer concurrently, keeps those above the threshold, and when a limit
// is set sorts them by descending global score and truncates. Ties keep input order.
func (s *Scorer) Rank(ctx context.Context, profile models.CandidateProfile, offers []models.OfferSnapshot, opts RankOptions) ([]Ranked, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scores := make([]models.MatchScore, len(offers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range offers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = s.Score(profile, offers[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to score offers: %w", err)
	}

	ranked := make([]Ranked, 0, len(offers))
	for i, score := range scores {
		if score.Global > opts.Threshold {
			ranked = append(ranked, Ranked{Offer: offers[i], Score: score})
		}
	}

	if opts.Limit > 0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score.Global > ranked[j].Score.Global
		})
		if len(ranked) > opts.Limit {
			ranked = ranked[:opts.Limit]
		}
	}

	return ranked, nil
}

// ToMatches converts ranked offers to their API shape.
func ToMatches(ranked []Ranked) []models.OfferMatch {
	out := make([]models.OfferMatch, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, models.OfferMatch{
			Offer:             r.Offer.Summary(),
			GlobalScore:       r.Score.Global,
			MatchingSkills:    r.Score.MatchingSkills,
			MatchingLanguages: r.Score.MatchingLanguages,
			Detail: models.ScoreDetail{
				Text:       r.Score.Text,
				Skills:     r.Score.Skills,
				Languages:  r.Score.Languages,
				Experience: r.Score.Experience,
			},
		})
	}
	return out
}
