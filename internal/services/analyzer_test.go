package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/matching"
	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/nlp"
	"digitalcook/cv-matcher/internal/outcome"
)

type stubClassifier struct {
	result outcome.Result[[]string]
	input  []string
}

func (s *stubClassifier) Classify(_ context.Context, sentences []string) outcome.Result[[]string] {
	s.input = sentences
	return s.result
}

type stubClassifierSource struct {
	clf SentenceClassifier
	err error
}

func (s stubClassifierSource) Classifier(context.Context) (SentenceClassifier, error) {
	return s.clf, s.err
}

type stubSkills struct{ result outcome.Result[[]string] }

func (s stubSkills) Extract(context.Context, string) outcome.Result[[]string] { return s.result }

type stubDurations struct{ result outcome.Result[float64] }

func (s stubDurations) Estimate(context.Context, string) outcome.Result[float64] { return s.result }

type stubOffers struct {
	offers []models.Offer
	err    error
}

func (s stubOffers) ListActive(context.Context) ([]models.Offer, error) { return s.offers, s.err }

type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, sentences []string) outcome.Result[[]string] {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = "FR " + s
	}
	return outcome.Success(out)
}

const resumeText = "Jane Doe\nBackend developer at Acme in France\nJan 2020 - Jan 2022 payment platform in Python\nEnglish"

func testOffers() []models.Offer {
	return []models.Offer{
		{
			ID:             uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			Title:          "Backend developer",
			Description:    "Build the payment platform in Python",
			RequiredSkills: "Python, Java",
			Languages:      []string{"Anglais (B2)"},
		},
		{
			ID:             uuid.MustParse("00000000-0000-0000-0000-000000000002"),
			Title:          "Pastry chef",
			Description:    "Croissants and brioche",
			RequiredSkills: "Baking",
			Languages:      []string{"Allemand (C1)"},
		},
	}
}

func newTestAnalyzer(clf SentenceClassifier, deps AnalyzerDeps) *Analyzer {
	deps.Classifiers = stubClassifierSource{clf: clf}
	if deps.Skills == nil {
		deps.Skills = stubSkills{outcome.Success([]string{"python", "sql"})}
	}
	if deps.Durations == nil {
		deps.Durations = stubDurations{outcome.Success(2.0)}
	}
	if deps.Offers == nil {
		deps.Offers = stubOffers{offers: testOffers()}
	}
	deps.Rank = matching.DefaultRankOptions()
	return NewAnalyzer(deps, zap.NewNop())
}

func TestAnalyzeTextRanksOffers(t *testing.T) {
	clf := &stubClassifier{result: outcome.Success([]string{"Jan 2020 - Jan 2022 payment platform in Python"})}
	a := newTestAnalyzer(clf, AnalyzerDeps{})

	res, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{})
	require.NoError(t, err)

	assert.Len(t, clf.input, 4)
	assert.Equal(t, []string{"python", "sql"}, res.Skills)
	assert.Equal(t, "2 ans 0 mois", res.Duration)
	assert.Equal(t, 2.0, res.DurationYears)
	assert.Contains(t, res.Countries, "France")
	assert.Equal(t, []string{"anglais"}, res.Languages)
	assert.Equal(t, []string{"Jan 2020 - Jan 2022 payment platform in Python"}, res.Experiences)
	assert.Empty(t, res.Degraded)

	require.Len(t, res.Matches, 1)
	match := res.Matches[0]
	assert.Equal(t, "Backend developer", match.Offer.Title)
	assert.Equal(t, []string{"python"}, match.MatchingSkills)
	assert.Equal(t, []string{"anglais"}, match.MatchingLanguages)
	assert.Equal(t, 0.5, match.Detail.Skills)
	assert.Equal(t, 1.0, match.Detail.Languages)
	assert.Equal(t, 1.0, match.Detail.Experience)
	assert.Greater(t, match.GlobalScore, 0.28)
}

func TestAnalyzeTextUsesStatedLanguages(t *testing.T) {
	clf := &stubClassifier{result: outcome.Success([]string{})}
	a := newTestAnalyzer(clf, AnalyzerDeps{})

	res, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{Languages: []string{"Allemand (C1)"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"allemand"}, res.Languages)
}

func TestAnalyzeTextTranslatesExperiences(t *testing.T) {
	clf := &stubClassifier{result: outcome.Success([]string{"Built things"})}
	a := newTestAnalyzer(clf, AnalyzerDeps{Translator: upperTranslator{}})

	res, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"FR Built things"}, res.Experiences)
}

func TestAnalyzeTextDegradesBestEffortSteps(t *testing.T) {
	clf := &stubClassifier{result: outcome.Degrade[[]string](classifier.ErrClassification)}
	a := newTestAnalyzer(clf, AnalyzerDeps{
		Skills:    stubSkills{outcome.Degrade[[]string](nlp.ErrSkillAnnotation)},
		Durations: stubDurations{outcome.Partial(1.5, nlp.ErrDateParse)},
	})

	res, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{DegradedClassification, DegradedSkills, DegradedDuration}, res.Degraded)
	assert.Empty(t, res.Skills)
	assert.NotNil(t, res.Skills)
	assert.Empty(t, res.Experiences)
	assert.Equal(t, "1 an 6 mois", res.Duration)
}

func TestAnalyzeTextAbortingErrors(t *testing.T) {
	clf := &stubClassifier{result: outcome.Success([]string{})}

	t.Run("empty text", func(t *testing.T) {
		_, err := newTestAnalyzer(clf, AnalyzerDeps{}).AnalyzeText(context.Background(), " \n ", models.AnalyseRequest{})
		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("missing classifier", func(t *testing.T) {
		a := newTestAnalyzer(clf, AnalyzerDeps{})
		a.deps.Classifiers = stubClassifierSource{err: classifier.ErrArtifactMissing}
		_, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{})
		assert.ErrorIs(t, err, classifier.ErrArtifactMissing)
	})

	t.Run("offer store", func(t *testing.T) {
		a := newTestAnalyzer(clf, AnalyzerDeps{Offers: stubOffers{err: errors.New("connection refused")}})
		_, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{})
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("cancelled duration", func(t *testing.T) {
		a := newTestAnalyzer(clf, AnalyzerDeps{Durations: stubDurations{outcome.Fail[float64](context.Canceled)}})
		_, err := a.AnalyzeText(context.Background(), resumeText, models.AnalyseRequest{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAnalyzeFileRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	clf := &stubClassifier{result: outcome.Success([]string{})}
	a := newTestAnalyzer(clf, AnalyzerDeps{})

	docx := filepath.Join(dir, "resume.docx")
	require.NoError(t, os.WriteFile(docx, []byte("PK\x03\x04"), 0644))
	_, err := a.AnalyzeFile(context.Background(), docx, models.AnalyseRequest{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Nil(t, clf.input)

	fake := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("plain text"), 0644))
	_, err = a.AnalyzeFile(context.Background(), fake, models.AnalyseRequest{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

type stubParser struct {
	text string
	err  error
}

func (s stubParser) ExtractText(string) (string, error) { return s.text, s.err }

func (s stubParser) ExtractTextWithMetaData(path string) (*PDFContent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &PDFContent{Text: s.text, PageCount: 1, FilePath: path}, nil
}

func writePDFStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0644))
	return path
}

func TestAnalyzeFileExtractsText(t *testing.T) {
	clf := &stubClassifier{result: outcome.Success([]string{})}
	a := newTestAnalyzer(clf, AnalyzerDeps{PDFParser: stubParser{text: resumeText}})

	res, err := a.AnalyzeFile(context.Background(), writePDFStub(t), models.AnalyseRequest{})
	require.NoError(t, err)
	assert.Len(t, clf.input, 4)
	assert.Equal(t, []string{"python", "sql"}, res.Skills)
}

func TestAnalyzeFileExtractionFailure(t *testing.T) {
	clf := &stubClassifier{result: outcome.Success([]string{})}
	a := newTestAnalyzer(clf, AnalyzerDeps{PDFParser: stubParser{err: ErrExtraction}})

	_, err := a.AnalyzeFile(context.Background(), writePDFStub(t), models.AnalyseRequest{})
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Nil(t, clf.input)
}
