package repository

import (
	"context"
	"time"

	"kbomate/internal/models"

	"gorm.io/gorm"
)

// BanRepository persists user suspensions.
type BanRepository interface {
	Create(ctx context.Context, ban *models.UserBan) error
	Delete(ctx context.Context, id uint) error
	ActiveForUser(ctx context.Context, userID uint, now time.Time) ([]models.UserBan, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

type banRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) Create(ctx context.Context, ban *models.UserBan) error {
	if err := r.db.WithContext(ctx).Create(ban).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *banRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.UserBan{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Ban", id)
	}
	return nil
}

// ActiveForUser returns bans covering now, latest ending first.
func (r *banRepository) ActiveForUser(ctx context.Context, userID uint, now time.Time) ([]models.UserBan, error) {
	var bans []models.UserBan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_at <= ? AND end_at > ?", userID, now, now).
		Order("end_at DESC").
		Find(&bans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return bans, nil
}

func (r *banRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.UserBan{}).
		Where("start_at <= ? AND end_at > ?", now, now).
		Distinct("user_id").
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
