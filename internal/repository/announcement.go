package repository

import (
	"context"
	"time"

	"kbomate/internal/cache"
	"kbomate/internal/models"

	"gorm.io/gorm"
)

// AnnouncementRepository persists admin announcements.
type AnnouncementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Announcement, error)
	GetByID(ctx context.Context, id uint) (*models.Announcement, error)
	Save(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id uint) error
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) List(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	if err := r.db.WithContext(ctx).Order("priority ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ListActive returns announcements whose date window encloses now, ordered by priority.
func (r *announcementRepository) ListActive(ctx context.Context, now time.Time) ([]models.Announcement, error) {
	return cache.Aside(ctx, cache.ActiveAnnouncementsKey(), cache.ActiveContentTTL, func(ctx context.Context) ([]models.Announcement, error) {
		var out []models.Announcement
		err := readDB(r.db).WithContext(ctx).
			Where("start_date IS NULL OR start_date <= ?", now).
			Where("end_date IS NULL OR end_date >= ?", now).
			Order("priority ASC").Order("id ASC").
			Find(&out).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return out, nil
	})
}

func (r *announcementRepository) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, lookupError(err, "Announcement", id)
	}
	return &a, nil
}

// Save updates the row when a.ID is set and inserts otherwise.
func (r *announcementRepository) Save(ctx context.Context, a *models.Announcement) error {
	db := r.db.WithContext(ctx)
	if a.ID == 0 {
		if err := db.Create(a).Error; err != nil {
			return models.NewInternalError(err)
		}
	} else {
		res := db.Model(&models.Announcement{}).Where("id = ?", a.ID).Select(
			"title", "content", "type", "target", "start_date", "end_date", "priority", "updated_at",
		).Updates(a)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Announcement", a.ID)
		}
	}
	cache.Invalidate(ctx, cache.ActiveAnnouncementsKey())
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Announcement", id)
	}
	cache.Invalidate(ctx, cache.ActiveAnnouncementsKey())
	return nil
}
