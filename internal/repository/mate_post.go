package repository

import (
	"context"

	"kbomate/internal/models"
	"kbomate/internal/observability"

	"gorm.io/gorm"
)

// MatePostRepository persists mate board posts.
type MatePostRepository interface {
	List(ctx context.Context, teamID *uint, page, size int) ([]models.MatePost, int64, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.MatePost, error)
	GetByID(ctx context.Context, id uint) (*models.MatePost, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, post *models.MatePost) error
	UpdateOwned(ctx context.Context, id, userID uint, fields map[string]any) (int64, error)
	DeleteOwned(ctx context.Context, id, userID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type matePostRepository struct {
	db *gorm.DB
}

func NewMatePostRepository(db *gorm.DB) MatePostRepository {
	return &matePostRepository{db: db}
}

func preloadAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "nickname", "email", "role", "favorite_team_id")
}

func (r *matePostRepository) List(ctx context.Context, teamID *uint, page, size int) ([]models.MatePost, int64, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "List", "mate_posts")
	defer span.End()

	q := readDB(r.db).WithContext(ctx).Model(&models.MatePost{}).Where("is_deleted = ?", false)
	if teamID != nil {
		q = q.Where("team_id = ?", *teamID)
	}

	// Session makes q reusable for the count and the page query.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	limit, offset := offsetRange(page, size)
	var posts []models.MatePost
	err := q.Preload("User", preloadAuthor).Preload("Team").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *matePostRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.MatePost, error) {
	var posts []models.MatePost
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetByID hides soft-deleted posts.
func (r *matePostRepository) GetByID(ctx context.Context, id uint) (*models.MatePost, error) {
	var post models.MatePost
	err := r.db.WithContext(ctx).
		Preload("User", preloadAuthor).Preload("Team").
		Where("is_deleted = ?", false).
		First(&post, id).Error
	if err != nil {
		return nil, lookupError(err, "MatePost", id)
	}
	return &post, nil
}

// Exists checks the primary, including soft-deleted rows.
func (r *matePostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.MatePost{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *matePostRepository) Create(ctx context.Context, post *models.MatePost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateOwned applies fields to the post only if userID owns it and reports the rows touched.
func (r *matePostRepository) UpdateOwned(ctx context.Context, id, userID uint, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.MatePost{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(fields)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *matePostRepository) DeleteOwned(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.MatePost{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *matePostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.MatePost{}).Where("is_deleted = ?", false).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
