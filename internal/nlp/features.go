package nlp

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// FeatureNames is the fixed column order of a sentence feature vector.
var FeatureNames = [...]string{
	"Verbs number",
	"Adjectives number",
	"Stopwords number",
	"Sentence length",
	"Nouns number",
	"Special chars number",
	"Punctuation number",
	"Digits number",
	"Skills number",
}

// Features is the numeric summary of one sentence fed to the experience classifier.
type Features struct {
	Verbs        int
	Adjectives   int
	Stopwords    int
	Length       int
	Nouns        int
	SpecialChars int
	Punctuation  int
	Digits       int
	Skills       int
}

// Values returns the features in FeatureNames order.
func (f Features) Values() []float64 {
	return []float64{
		float64(f.Verbs),
		float64(f.Adjectives),
		float64(f.Stopwords),
		float64(f.Length),
		float64(f.Nouns),
		float64(f.SpecialChars),
		float64(f.Punctuation),
		float64(f.Digits),
		float64(f.Skills),
	}
}

// FeaturesFromValues is the inverse of Values.
func FeaturesFromValues(v []float64) (Features, error) {
	if len(v) != len(FeatureNames) {
		return Features{}, fmt.Errorf("expected %d feature values, got %d", len(FeatureNames), len(v))
	}
	return Features{
		Verbs:        int(v[0]),
		Adjectives:   int(v[1]),
		Stopwords:    int(v[2]),
		Length:       int(v[3]),
		Nouns:        int(v[4]),
		SpecialChars: int(v[5]),
		Punctuation:  int(v[6]),
		Digits:       int(v[7]),
		Skills:       int(v[8]),
	}, nil
}

// TaggedToken is a token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger tokenizes and POS-tags a sentence. Implementations must be deterministic.
type Tagger interface {
	Tag(text string) ([]TaggedToken, error)
}

// ProseTagger is the averaged perceptron tagger bundled with prose. Its weights are
// embedded in the library so training and inference always see the same model.
type ProseTagger struct{}

func (ProseTagger) Tag(text string) ([]TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tag sentence: %w", err)
	}

	tokens := doc.Tokens()
	out := make([]TaggedToken, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, TaggedToken{Text: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}

// FeatureExtractor computes sentence feature vectors.
type FeatureExtractor struct {
	tagger Tagger
	skills *SkillExtractor
}

func NewFeatureExtractor(tagger Tagger, skills *SkillExtractor) *FeatureExtractor {
	if tagger == nil {
		tagger = ProseTagger{}
	}
	return &FeatureExtractor{tagger: tagger, skills: skills}
}

// Extract computes the feature vector of one sentence. A tagging failure yields the zero
// vector; a skill annotation failure only zeroes the skill count.
func (e *FeatureExtractor) Extract(ctx context.Context, sentence string) Features {
	var f Features

	tokens, err := e.tagger.Tag(strings.TrimSpace(sentence))
	if err != nil {
		return f
	}

	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok.Tag, "VB"):
			f.Verbs++
		case strings.HasPrefix(tok.Tag, "JJ"):
			f.Adjectives++
		case tok.Tag == "NN" || tok.Tag == "NNS":
			f.Nouns++
		}

		if IsStopword(tok.Text) {
			f.Stopwords++
		}

		switch {
		case isDigits(tok.Text):
			f.Digits++
		case isPunct(tok.Text):
			f.Punctuation++
		case !isAlnum(tok.Text):
			f.SpecialChars++
		}
	}
	f.Length = len(tokens)

	if e.skills != nil {
		res := e.skills.Extract(ctx, sentence)
		f.Skills = min(len(res.Value), f.Length)
	}

	return f
}

func isDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

func isPunct(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsPunct(r) }) < 0
}

func isAlnum(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) < 0
}
