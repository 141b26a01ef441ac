package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/models"
)

// ArtifactRepository stores classifier artifacts in the model_artifacts table.
type ArtifactRepository struct {
	db *gorm.DB
}

var _ classifier.ArtifactStore = (*ArtifactRepository)(nil)

func NewArtifactRepository(db *gorm.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) Load(ctx context.Context, name string) ([]byte, error) {
	var artifact models.ModelArtifact
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&artifact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", classifier.ErrArtifactMissing, name)
		}
		return nil, fmt.Errorf("failed to load artifact %s: %w", name, err)
	}
	return artifact.Data, nil
}

func (r *ArtifactRepository) Save(ctx context.Context, name string, data []byte) error {
	artifact := models.ModelArtifact{Name: name, Data: data, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&artifact).Error
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}
