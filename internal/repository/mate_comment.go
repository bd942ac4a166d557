package repository

import (
	"context"

	"kbomate/internal/models"

	"gorm.io/gorm"
)

// MateCommentRepository persists replies on mate posts.
type MateCommentRepository interface {
	ListByPost(ctx context.Context, postID uint) ([]models.MateComment, error)
	GetByID(ctx context.Context, id uint) (*models.MateComment, error)
	Create(ctx context.Context, comment *models.MateComment) error
	UpdateOwned(ctx context.Context, id, userID uint, content string) (int64, error)
	DeleteOwned(ctx context.Context, id, userID uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) error
}

type mateCommentRepository struct {
	db *gorm.DB
}

func NewMateCommentRepository(db *gorm.DB) MateCommentRepository {
	return &mateCommentRepository{db: db}
}

func (r *mateCommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.MateComment, error) {
	var comments []models.MateComment
	err := r.db.WithContext(ctx).
		Preload("User", preloadAuthor).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *mateCommentRepository) GetByID(ctx context.Context, id uint) (*models.MateComment, error) {
	var c models.MateComment
	if err := r.db.WithContext(ctx).Where("is_deleted = ?", false).First(&c, id).Error; err != nil {
		return nil, lookupError(err, "MateComment", id)
	}
	return &c, nil
}

func (r *mateCommentRepository) Create(ctx context.Context, comment *models.MateComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateOwned is filtered by id AND user_id; zero rows means the caller does not own the comment.
func (r *mateCommentRepository) UpdateOwned(ctx context.Context, id, userID uint, content string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.MateComment{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Update("content", content)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *mateCommentRepository) DeleteOwned(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.MateComment{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *mateCommentRepository) DeleteByPost(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.MateComment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
