package repository

import (
	"context"

	"kbomate/internal/models"

	"gorm.io/gorm"
)

// PageRoleRepository stores which roles may open which admin pages.
type PageRoleRepository interface {
	List(ctx context.Context) ([]models.AdminPageRole, error)
	HasAccess(ctx context.Context, pageKey string, role models.Role) (bool, error)
	ApplyDiff(ctx context.Context, added, removed []models.AdminPageRole) error
}

type pageRoleRepository struct {
	db *gorm.DB
}

func NewPageRoleRepository(db *gorm.DB) PageRoleRepository {
	return &pageRoleRepository{db: db}
}

func (r *pageRoleRepository) List(ctx context.Context) ([]models.AdminPageRole, error) {
	var out []models.AdminPageRole
	if err := r.db.WithContext(ctx).Order("page_key ASC").Order("role ASC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *pageRoleRepository) HasAccess(ctx context.Context, pageKey string, role models.Role) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.AdminPageRole{}).
		Where("page_key = ? AND role = ?", pageKey, role).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// ApplyDiff inserts added and deletes removed pairs in one transaction.
func (r *pageRoleRepository) ApplyDiff(ctx context.Context, added, removed []models.AdminPageRole) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(added) > 0 {
			if err := tx.Create(&added).Error; err != nil {
				return err
			}
		}
		for _, pr := range removed {
			if err := tx.Where("page_key = ? AND role = ?", pr.PageKey, pr.Role).
				Delete(&models.AdminPageRole{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("page role already granted")
		}
		return models.NewInternalError(err)
	}
	return nil
}
