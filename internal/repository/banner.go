package repository

import (
	"context"
	"time"

	"kbomate/internal/cache"
	"kbomate/internal/models"

	"gorm.io/gorm"
)

// BannerRepository persists promotional banners.
type BannerRepository interface {
	List(ctx context.Context) ([]models.Banner, error)
	ListActive(ctx context.Context, location models.BannerLocation, now time.Time) ([]models.Banner, error)
	Save(ctx context.Context, b *models.Banner) error
	Delete(ctx context.Context, id uint) error
}

type bannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) List(ctx context.Context) ([]models.Banner, error) {
	var out []models.Banner
	if err := r.db.WithContext(ctx).Order("priority ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ListActive returns enabled banners inside their window. An empty location matches every slot.
func (r *bannerRepository) ListActive(ctx context.Context, location models.BannerLocation, now time.Time) ([]models.Banner, error) {
	key := cache.ActiveBannersKey(string(location))
	return cache.Aside(ctx, key, cache.ActiveContentTTL, func(ctx context.Context) ([]models.Banner, error) {
		q := readDB(r.db).WithContext(ctx).
			Where("is_active = ?", true).
			Where("start_date IS NULL OR start_date <= ?", now).
			Where("end_date IS NULL OR end_date >= ?", now)
		if location != "" {
			q = q.Where("location = ?", location)
		}

		var out []models.Banner
		if err := q.Order("priority ASC").Order("id ASC").Find(&out).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return out, nil
	})
}

func (r *bannerRepository) Save(ctx context.Context, b *models.Banner) error {
	db := r.db.WithContext(ctx)
	if b.ID == 0 {
		if err := db.Create(b).Error; err != nil {
			return models.NewInternalError(err)
		}
	} else {
		res := db.Model(&models.Banner{}).Where("id = ?", b.ID).Select(
			"title", "content", "image_url", "link_url", "location", "target",
			"start_date", "end_date", "priority", "is_active", "updated_at",
		).Updates(b)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Banner", b.ID)
		}
	}
	cache.InvalidateActiveBanners(ctx)
	return nil
}

func (r *bannerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Banner{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Banner", id)
	}
	cache.InvalidateActiveBanners(ctx)
	return nil
}
