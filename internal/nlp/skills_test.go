package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnnotator struct {
	ann   Annotation
	err   error
	panic bool
	calls int
}

func (s *stubAnnotator) Annotate(_ context.Context, _ string) (Annotation, error) {
	s.calls++
	if s.panic {
		panic("index out of range")
	}
	return s.ann, s.err
}

func testTaxonomy() *TaxonomyAnnotator {
	return NewTaxonomyAnnotator(map[string]SkillEntry{
		"KS1": {
			Name:             "Python (Programming Language)",
			HighSurfaceForms: map[string]string{"full": "python"},
			LowSurfaceForms:  []string{"python"},
			MatchOnTokens:    true,
		},
		"KS2": {
			Name:             "Machine Learning",
			HighSurfaceForms: map[string]string{"full": "machine learning"},
			LowSurfaceForms:  []string{"machine learning"},
		},
		"KS3": {
			Name:             "Structured Query Language (SQL)",
			HighSurfaceForms: map[string]string{"full": "structured query language", "abv": "sql"},
			LowSurfaceForms:  []string{"query language structured"},
		},
	})
}

func TestTaxonomyAnnotatorFullMatches(t *testing.T) {
	t.Parallel()

	ann, err := testTaxonomy().Annotate(context.Background(), "Worked with Python and SQL on Machine  Learning.")
	require.NoError(t, err)

	var values []string
	for _, m := range ann.FullMatches {
		values = append(values, m.Value)
	}
	assert.ElementsMatch(t, []string{"python", "sql", "machine learning"}, values)
	assert.Empty(t, ann.NgramScored)
}

func TestTaxonomyAnnotatorNgramScored(t *testing.T) {
	t.Parallel()

	ann, err := testTaxonomy().Annotate(context.Background(), "learning machine models")
	require.NoError(t, err)

	assert.Empty(t, ann.FullMatches)
	require.Len(t, ann.NgramScored, 1)
	assert.Equal(t, "KS2", ann.NgramScored[0].SkillID)
	assert.Equal(t, "learning machine", ann.NgramScored[0].Value)
	assert.InDelta(t, 1.0, ann.NgramScored[0].Score, 1e-9)
}

func TestTaxonomyAnnotatorHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testTaxonomy().Annotate(ctx, "python")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTaxonomy(t *testing.T) {
	t.Parallel()

	const db = `{"KS1": {"skill_name": "Go", "skill_type": "Hard Skill", "skill_len": 1,
		"high_surfce_forms": {"full": "golang"}, "low_surface_forms": [], "match_on_tokens": false}}`

	a, err := ParseTaxonomy(strings.NewReader(db))
	require.NoError(t, err)

	ann, err := a.Annotate(context.Background(), "Backend in Golang")
	require.NoError(t, err)
	require.Len(t, ann.FullMatches, 1)
	assert.Equal(t, "golang", ann.FullMatches[0].Value)

	_, err = ParseTaxonomy(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestSkillExtractorNormalizesAndSorts(t *testing.T) {
	t.Parallel()

	stub := &stubAnnotator{ann: Annotation{
		FullMatches: []Match{{Value: "SQL"}, {Value: "Python  python 3"}},
		NgramScored: []Match{{Value: "sql"}, {Value: " "}},
	}}
	ext := NewSkillExtractor(stub, zap.NewNop(), time.Minute)

	res := ext.Extract(context.Background(), "some text")
	require.True(t, res.IsOK())
	assert.Equal(t, []string{"python 3", "sql"}, res.Value)
}

func TestSkillExtractorIsIdempotentAndCached(t *testing.T) {
	t.Parallel()

	ext := NewSkillExtractor(testTaxonomy(), zap.NewNop(), time.Minute)
	text := "Python developer with SQL"

	first := ext.Extract(context.Background(), text)
	second := ext.Extract(context.Background(), text)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"python", "sql"}, first.Value)

	stub := &stubAnnotator{ann: Annotation{FullMatches: []Match{{Value: "go"}}}}
	cached := NewSkillExtractor(stub, zap.NewNop(), time.Minute)
	cached.Extract(context.Background(), "Go")
	cached.Extract(context.Background(), "  go ")
	assert.Equal(t, 1, stub.calls)
}

func TestSkillExtractorDegradesOnAnnotatorFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		stub *stubAnnotator
	}{
		{name: "error", stub: &stubAnnotator{err: errors.New("tokenizer exploded")}},
		{name: "panic", stub: &stubAnnotator{panic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := NewSkillExtractor(tt.stub, zap.NewNop(), time.Minute)

			res := ext.Extract(context.Background(), "python")
			assert.True(t, res.IsDegraded())
			assert.Empty(t, res.Value)
			assert.ErrorIs(t, res.Err, ErrSkillAnnotation)

			// failures are not cached
			ext.Extract(context.Background(), "python")
			assert.Equal(t, 2, tt.stub.calls)
		})
	}
}

func TestSkillExtractorEmptyText(t *testing.T) {
	t.Parallel()

	stub := &stubAnnotator{}
	res := NewSkillExtractor(stub, zap.NewNop(), 0).Extract(context.Background(), " \n ")
	assert.True(t, res.IsOK())
	assert.Empty(t, res.Value)
	assert.Zero(t, stub.calls)
}
