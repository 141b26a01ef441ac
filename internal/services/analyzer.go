package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/logger"
	"digitalcook/cv-matcher/internal/matching"
	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/nlp"
	"digitalcook/cv-matcher/internal/outcome"
	"digitalcook/cv-matcher/internal/repositories"
)

type stage string

const (
	stageReceiveText       stage = "RECEIVE_TEXT"
	stageClassifySentences stage = "CLASSIFY_SENTENCES"
	stageBuildProfile      stage = "BUILD_PROFILE"
	stageScoreOffers       stage = "SCORE_OFFERS"
	stageFilterAndSort     stage = "FILTER_AND_SORT"
	stageReturn            stage = "RETURN"
)

// Names reported in AnalysisResult.Degraded.
const (
	DegradedClassification = "classification"
	DegradedSkills         = "skills"
	DegradedDuration       = "duration"
	DegradedTranslation    = "translation"
)

type SentenceClassifier interface {
	Classify(ctx context.Context, sentences []string) outcome.Result[[]string]
}

// ClassifierSource hands out the loaded classifier. It must not train.
type ClassifierSource interface {
	Classifier(ctx context.Context) (SentenceClassifier, error)
}

type provisionedClassifier struct {
	provisioner *classifier.Provisioner
}

// FromProvisioner exposes a provisioner as a ClassifierSource.
func FromProvisioner(p *classifier.Provisioner) ClassifierSource {
	return provisionedClassifier{provisioner: p}
}

func (s provisionedClassifier) Classifier(ctx context.Context) (SentenceClassifier, error) {
	c, err := s.provisioner.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type SkillExtractor interface {
	Extract(ctx context.Context, text string) outcome.Result[[]string]
}

type DurationEstimator interface {
	Estimate(ctx context.Context, text string) outcome.Result[float64]
}

type AnalyzerDeps struct {
	Classifiers ClassifierSource
	Skills      SkillExtractor
	Durations   DurationEstimator
	Translator  Translator
	Offers      repositories.OfferSource
	Scorer      *matching.Scorer
	PDFParser   PDFParserService
	Rank        matching.RankOptions
}

// Analyzer runs one résumé through classification, profile building and offer ranking.
type Analyzer struct {
	deps   AnalyzerDeps
	logger *zap.Logger
}

func NewAnalyzer(deps AnalyzerDeps, logger *zap.Logger) *Analyzer {
	if deps.Translator == nil {
		deps.Translator = NoopTranslator{}
	}
	if deps.Scorer == nil {
		deps.Scorer = matching.NewScorer(matching.DefaultWeights())
	}
	if deps.PDFParser == nil {
		deps.PDFParser = NewPDFParserService()
	}
	return &Analyzer{deps: deps, logger: logger}
}

// AnalyzeFile checks that path is a PDF, extracts its text and analyzes it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, req models.AnalyseRequest) (*models.AnalysisResult, error) {
	if err := CheckPDF(path); err != nil {
		return nil, err
	}

	content, err := a.deps.PDFParser.ExtractTextWithMetaData(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("📄 Résumé text extracted", zap.Int("pages", content.PageCount), zap.Int("chars", len(content.Text)))
	a.logger.Debug("Résumé text", zap.String("preview", logger.Preview(content.Text, 200)))

	return a.AnalyzeText(ctx, content.Text, req)
}

// AnalyzeText analyzes résumé text. Only a missing classifier, an offer store failure or
// cancellation abort; the other steps degrade and are listed in the result.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string, req models.AnalyseRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	a.enter(stageReceiveText, zap.Int("chars", len(text)))
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: résumé text is empty", ErrExtraction)
	}

	clf, err := a.deps.Classifiers.Classifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}

	result := &models.AnalysisResult{}

	a.enter(stageClassifySentences)
	classified := clf.Classify(ctx, strings.Split(text, "\n"))
	degrade(a, result, DegradedClassification, classified)
	experiences := classified.Value
	if experiences == nil {
		experiences = []string{}
	}

	a.enter(stageBuildProfile, zap.Int("experiences", len(experiences)))
	skills := a.deps.Skills.Extract(ctx, text)
	degrade(a, result, DegradedSkills, skills)

	duration := a.deps.Durations.Estimate(ctx, text)
	if duration.IsFatal() {
		return nil, fmt.Errorf("failed to estimate experience duration: %w", duration.Err)
	}
	degrade(a, result, DegradedDuration, duration)

	translated := a.deps.Translator.Translate(ctx, experiences)
	degrade(a, result, DegradedTranslation, translated)
	if len(translated.Value) == len(experiences) {
		experiences = translated.Value
	}

	profile := models.CandidateProfile{
		Skills:              nonNilStrings(skills.Value),
		Languages:           nlp.CandidateLanguages(req.Languages, text),
		ExperienceSentences: experiences,
		ExperienceYears:     duration.Value,
	}

	a.enter(stageScoreOffers)
	offers, err := a.deps.Offers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	snapshots := make([]models.OfferSnapshot, 0, len(offers))
	for _, o := range offers {
		snapshots = append(snapshots, o.Snapshot())
	}

	a.enter(stageFilterAndSort, zap.Int("offers", len(snapshots)))
	ranked, err := a.deps.Scorer.Rank(ctx, profile, snapshots, a.deps.Rank)
	if err != nil {
		return nil, err
	}

	result.Skills = profile.Skills
	result.DurationYears = profile.ExperienceYears
	result.Duration = nlp.FormatDuration(profile.ExperienceYears)
	result.Countries = nlp.DetectCountries(text)
	result.Languages = profile.Languages
	result.Experiences = profile.ExperienceSentences
	result.Matches = matching.ToMatches(ranked)

	a.enter(stageReturn,
		zap.Int("matches", len(result.Matches)),
		zap.Strings("degraded", result.Degraded),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (a *Analyzer) enter(s stage, fields ...zap.Field) {
	a.logger.Debug("🔄 Analysis stage", append([]zap.Field{zap.String("stage", string(s))}, fields...)...)
}

func degrade[T any](a *Analyzer, result *models.AnalysisResult, step string, r outcome.Result[T]) {
	if !r.IsDegraded() {
		return
	}
	result.Degraded = append(result.Degraded, step)
	a.logger.Warn("⚠️ Analysis step degraded", zap.String("step", step), zap.Error(r.Err))
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
