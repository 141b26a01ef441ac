package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"digitalcook/cv-matcher/internal/models"
)

var ErrOfferNotFound = errors.New("offer not found")

// OfferSource lists the offers a résumé is ranked against.
type OfferSource interface {
	ListActive(ctx context.Context) ([]models.Offer, error)
}

// OfferWriter adds offers to a store.
type OfferWriter interface {
	Create(ctx context.Context, offer *models.Offer) error
}

type OfferRepository interface {
	OfferSource
	OfferWriter
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListAll(ctx context.Context) ([]models.Offer, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

// Create implements OfferRepository.
func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	if offer.Status == "" {
		offer.Status = models.OfferActive
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

// FindByID implements OfferRepository.
func (r *offerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	return &offer, nil
}

// ListActive implements OfferSource.
func (r *offerRepository) ListActive(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ?", models.OfferActive, false).
		Order("created_at ASC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}
	return offers, nil
}

// ListAll implements OfferRepository.
func (r *offerRepository) ListAll(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at ASC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}
