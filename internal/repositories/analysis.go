package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"digitalcook/cv-matcher/internal/models"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AnalysisStatus) error
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateResult(ctx context.Context, id uuid.UUID, result *models.AnalysisResult) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.Analysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create implements AnalysisRepository.
func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// FindByID implements AnalysisRepository.
func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

// UpdateStatus implements AnalysisRepository.
func (r *analysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AnalysisStatus) error {
	return r.update(ctx, id, "status", map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

// Claim implements AnalysisRepository. It moves a queued analysis to processing and
// reports false when another worker got there first.
func (r *analysisRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim analysis: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// UpdateResult implements AnalysisRepository.
func (r *analysisRepository) UpdateResult(ctx context.Context, id uuid.UUID, result *models.AnalysisResult) error {
	// Updates with a map skips gorm serializers, so the row is loaded and saved whole.
	analysis, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	analysis.Status = models.StatusCompleted
	analysis.Result = result
	analysis.ErrorMessage = nil
	analysis.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(analysis).Error; err != nil {
		return fmt.Errorf("failed to update result: %w", err)
	}
	return nil
}

// UpdateError implements AnalysisRepository.
func (r *analysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, id, "error", map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

// FindPendingJobs implements AnalysisRepository.
func (r *analysisRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepository) update(ctx context.Context, id uuid.UUID, what string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", what, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}
