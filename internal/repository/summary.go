package repository

import (
	"context"

	"kbomate/internal/models"

	"gorm.io/gorm"
)

// SummaryRepository stores generated summaries.
type SummaryRepository interface {
	Create(ctx context.Context, s *models.Summary) error
	LatestForMate(ctx context.Context, mateID uint) (*models.Summary, error)
}

type summaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) Create(ctx context.Context, s *models.Summary) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// LatestForMate returns nil, nil when the post has never been summarized.
func (r *summaryRepository) LatestForMate(ctx context.Context, mateID uint) (*models.Summary, error) {
	var rows []models.Summary
	err := r.db.WithContext(ctx).
		Where("mate_id = ? AND source = ?", mateID, models.SummarySourceComments).
		Order("created_at DESC").Order("id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
