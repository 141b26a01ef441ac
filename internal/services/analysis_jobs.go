package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/repositories"
)

// FileAnalyzer is the part of Analyzer the asynchronous jobs need.
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string, req models.AnalyseRequest) (*models.AnalysisResult, error)
}

type AnalysisJobService interface {
	ProcessAnalysis(ctx context.Context, id uuid.UUID) error
}

type analysisJobService struct {
	repo     repositories.AnalysisRepository
	analyzer FileAnalyzer
	logger   *zap.Logger
}

func NewAnalysisJobService(repo repositories.AnalysisRepository, analyzer FileAnalyzer, logger *zap.Logger) AnalysisJobService {
	return &analysisJobService{repo: repo, analyzer: analyzer, logger: logger}
}

// ProcessAnalysis implements AnalysisJobService. Analysis failures are stored on the
// record before being returned.
func (s *analysisJobService) ProcessAnalysis(ctx context.Context, id uuid.UUID) error {
	claimed, err := s.repo.Claim(ctx, id)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Debug("⏭️ Analysis already claimed", zap.String("analysis_id", id.String()))
		return nil
	}

	analysis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find analysis: %w", err)
	}

	s.logger.Info("🔄 Starting analysis", zap.String("analysis_id", id.String()))

	result, err := s.analyzer.AnalyzeFile(ctx, analysis.FilePath, models.AnalyseRequest{Languages: analysis.Languages})
	if err != nil {
		s.logger.Warn("❌ Analysis failed", zap.String("analysis_id", id.String()), zap.Error(err))
		if uerr := s.repo.UpdateError(ctx, id, err.Error()); uerr != nil {
			return fmt.Errorf("failed to store analysis error: %w", uerr)
		}
		return err
	}

	if err := s.repo.UpdateResult(ctx, id, result); err != nil {
		return fmt.Errorf("failed to store analysis result: %w", err)
	}

	s.logger.Info("✅ Analysis completed",
		zap.String("analysis_id", id.String()),
		zap.Int("matches", len(result.Matches)))
	return nil
}
