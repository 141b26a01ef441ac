package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Match is one phrase the annotator found in a text. Value is the matched text as it
// appears in the document, already normalized.
type Match struct {
	SkillID string
	Value   string
	Score   float64
}

// Annotation mirrors the two match collections of the skill taxonomy engine.
type Annotation struct {
	FullMatches []Match
	NgramScored []Match
}

// Annotator finds taxonomy phrases in free text.
type Annotator interface {
	Annotate(ctx context.Context, text string) (Annotation, error)
}

// SkillEntry is one record of a skill database in the skill_db_relax JSON layout.
type SkillEntry struct {
	Name             string            `json:"skill_name"`
	Type             string            `json:"skill_type"`
	Len              int               `json:"skill_len"`
	HighSurfaceForms map[string]string `json:"high_surfce_forms"`
	LowSurfaceForms  []string          `json:"low_surface_forms"`
	MatchOnTokens    bool              `json:"match_on_tokens"`
}

const defaultNgramThreshold = 0.6

type surfaceForm struct {
	skillID string
	phrase  string
	tokens  []string
}

// TaxonomyAnnotator matches text against a skill database: exact phrase matches on the
// high surface forms, and token-overlap scored n-grams on the low surface forms.
type TaxonomyAnnotator struct {
	full      []surfaceForm
	low       []surfaceForm
	byToken   map[string][]int
	threshold float64
}

// LoadTaxonomy reads a skill database JSON file.
func LoadTaxonomy(path string) (*TaxonomyAnnotator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open skill database: %w", err)
	}
	defer f.Close()

	return ParseTaxonomy(f)
}

func ParseTaxonomy(r io.Reader) (*TaxonomyAnnotator, error) {
	var db map[string]SkillEntry
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("failed to decode skill database: %w", err)
	}
	return NewTaxonomyAnnotator(db), nil
}

func NewTaxonomyAnnotator(db map[string]SkillEntry) *TaxonomyAnnotator {
	a := &TaxonomyAnnotator{
		byToken:   make(map[string][]int),
		threshold: defaultNgramThreshold,
	}

	// map iteration order is random; sort ids so annotations are reproducible
	ids := make([]string, 0, len(db))
	for id := range db {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		entry := db[id]
		for _, key := range sortedKeys(entry.HighSurfaceForms) {
			if form, ok := newSurfaceForm(id, entry.HighSurfaceForms[key]); ok {
				a.full = append(a.full, form)
			}
		}
		for _, raw := range entry.LowSurfaceForms {
			form, ok := newSurfaceForm(id, raw)
			if !ok {
				continue
			}
			if len(form.tokens) == 1 && !entry.MatchOnTokens {
				continue
			}
			idx := len(a.low)
			a.low = append(a.low, form)
			for _, tok := range uniqueTokens(form.tokens) {
				a.byToken[tok] = append(a.byToken[tok], idx)
			}
		}
	}

	return a
}

func newSurfaceForm(id, raw string) (surfaceForm, bool) {
	tokens := tokenize(NormalizeText(raw))
	if len(tokens) == 0 {
		return surfaceForm{}, false
	}
	return surfaceForm{skillID: id, phrase: strings.Join(tokens, " "), tokens: tokens}, true
}

// Annotate implements Annotator.
func (a *TaxonomyAnnotator) Annotate(ctx context.Context, text string) (Annotation, error) {
	if err := ctx.Err(); err != nil {
		return Annotation{}, err
	}

	tokens := tokenize(NormalizeText(text))
	if len(tokens) == 0 {
		return Annotation{}, nil
	}
	doc := strings.Join(tokens, " ")

	var ann Annotation
	matched := make(map[string]bool)
	for _, form := range a.full {
		if matched[form.skillID] {
			continue
		}
		if containsPhrase(doc, form.phrase) {
			matched[form.skillID] = true
			ann.FullMatches = append(ann.FullMatches, Match{SkillID: form.skillID, Value: form.phrase, Score: 1})
		}
	}

	best := make(map[string]Match)
	for _, idx := range a.candidates(tokens) {
		form := a.low[idx]
		if matched[form.skillID] {
			continue
		}
		window, score := bestWindow(tokens, form.tokens)
		if score < a.threshold {
			continue
		}
		if prev, ok := best[form.skillID]; ok && prev.Score >= score {
			continue
		}
		best[form.skillID] = Match{SkillID: form.skillID, Value: window, Score: score}
	}

	for _, id := range sortedKeys(best) {
		ann.NgramScored = append(ann.NgramScored, best[id])
	}

	return ann, nil
}

// candidates returns the low surface forms sharing at least one token with the document.
func (a *TaxonomyAnnotator) candidates(tokens []string) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, tok := range uniqueTokens(tokens) {
		for _, idx := range a.byToken[tok] {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// bestWindow slides a window of len(form) over the document and returns the window
// with the highest share of form tokens present in it.
func bestWindow(doc, form []string) (string, float64) {
	size := len(form)
	if size > len(doc) {
		size = len(doc)
	}
	want := make(map[string]struct{}, len(form))
	for _, t := range form {
		want[t] = struct{}{}
	}

	var (
		bestScore float64
		bestAt    = -1
	)
	for i := 0; i+size <= len(doc); i++ {
		hits := make(map[string]struct{}, size)
		for _, t := range doc[i : i+size] {
			if _, ok := want[t]; ok {
				hits[t] = struct{}{}
			}
		}
		score := float64(len(hits)) / float64(len(want))
		if score > bestScore {
			bestScore = score
			bestAt = i
		}
	}
	if bestAt < 0 {
		return "", 0
	}
	return strings.Join(doc[bestAt:bestAt+size], " "), bestScore
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
