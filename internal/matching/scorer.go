// Package matching scores job offers against a candidate profile and ranks them.
package matching

import (
	"sort"
	"strings"

	"digitalcook/cv-matcher/internal/models"
)

// Weights of the four sub-scores in the global score.
type Weights struct {
	Text       float64
	Skills     float64
	Languages  float64
	Experience float64
}

func DefaultWeights() Weights {
	return Weights{Text: 0.3, Skills: 0.3, Languages: 0.1, Experience: 0.1}
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score compares a profile with one offer. The skill and language ratios divide by the
// candidate's set size, so they measure how much of the candidate is relevant to the
// offer, not how much of the offer is covered.
func (s *Scorer) Score(profile models.CandidateProfile, offer models.OfferSnapshot) models.MatchScore {
	text := TextSimilarity(strings.Join(profile.ExperienceSentences, " "), offer.Document())
	skills, matchingSkills := Overlap(profile.Skills, offer.Skills)
	langs, matchingLangs := Overlap(profile.Languages, offer.Languages)

	var exp float64
	if profile.HasExperience() {
		exp = 1
	}

	return models.MatchScore{
		OfferID:           offer.ID,
		Global:            s.Global(text, skills, langs, exp),
		Text:              text,
		Skills:            skills,
		Languages:         langs,
		Experience:        exp,
		MatchingSkills:    matchingSkills,
		MatchingLanguages: matchingLangs,
	}
}

// Global is the weighted sum of the sub-scores.
func (s *Scorer) Global(text, skills, languages, experience float64) float64 {
	w := s.weights
	return w.Text*text + w.Skills*skills + w.Languages*languages + w.Experience*experience
}

// Overlap returns |candidate ∩ offer| / |candidate| and the sorted intersection.
// An empty candidate set scores 0.
func Overlap(candidate, offer []string) (float64, []string) {
	cand := make(map[string]struct{}, len(candidate))
	for _, c := range candidate {
		cand[c] = struct{}{}
	}
	if len(cand) == 0 {
		return 0, []string{}
	}

	common := make([]string, 0)
	seen := make(map[string]struct{}, len(offer))
	for _, o := range offer {
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		if _, ok := cand[o]; ok {
			common = append(common, o)
		}
	}
	sort.Strings(common)

	return float64(len(common)) / float64(len(cand)), common
}
