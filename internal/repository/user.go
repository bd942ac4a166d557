package repository

import (
	"context"
	"time"

	"kbomate/internal/cache"
	"kbomate/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetRole(ctx context.Context, id uint) (models.Role, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, nickname string, favoriteTeamID *uint) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	TouchLastSignIn(ctx context.Context, id uint, at time.Time) error
	UpsertOAuth(ctx context.Context, user *models.User) (*models.User, error)
	ListMembers(ctx context.Context, page, size int) ([]models.User, int64, error)
	ListStaff(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Preload("FavoriteTeam").First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no account uses email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// GetRole is read on every privileged request, so it goes through the cache.
func (r *userRepository) GetRole(ctx context.Context, id uint) (models.Role, error) {
	return cache.Aside(ctx, cache.UserRoleKey(id), cache.UserRoleTTL, func(ctx context.Context) (models.Role, error) {
		var user models.User
		if err := readDB(r.db).WithContext(ctx).Select("id", "role").First(&user, id).Error; err != nil {
			return "", lookupError(err, "User", id)
		}
		return user.Role, nil
	})
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, nickname string, favoriteTeamID *uint) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"nickname": nickname, "favorite_team_id": favoriteTeamID})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUserRole(ctx, id)
	return nil
}

func (r *userRepository) TouchLastSignIn(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_sign_in_at", at).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpsertOAuth links an OAuth identity to the account with the same email, creating it if needed.
// Role and nickname of an existing account are preserved.
func (r *userRepository) UpsertOAuth(ctx context.Context, user *models.User) (*models.User, error) {
	var out models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.User
		if err := tx.Where("email = ?", user.Email).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			if user.Role == "" {
				user.Role = models.RoleUser
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			out = *user
			return nil
		}

		out = existing[0]
		updates := map[string]any{"last_sign_in_at": user.LastSignInAt}
		if out.ProviderSubject == "" {
			updates["provider_subject"] = user.ProviderSubject
		}
		if err := tx.Model(&out).Updates(updates).Error; err != nil {
			return err
		}
		out.LastSignInAt = user.LastSignInAt
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("Email already registered")
		}
		return nil, models.NewInternalError(err)
	}
	return &out, nil
}

// ListMembers lists role=user accounts, newest first, with their mate post counts.
func (r *userRepository) ListMembers(ctx context.Context, page, size int) ([]models.User, int64, error) {
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	limit, offset := offsetRange(page, size)
	var users []models.User
	err := db.Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM mate_posts WHERE mate_posts.user_id = users.id AND mate_posts.is_deleted = ?) AS post_count", false).
		Where("users.role = ?", models.RoleUser).
		Order("users.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *userRepository) ListStaff(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).Order("role ASC").Order("email ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
