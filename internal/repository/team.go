package repository

import (
	"context"

	"kbomate/internal/cache"
	"kbomate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamRepository reads the KBO club catalog.
type TeamRepository interface {
	List(ctx context.Context) ([]models.Team, error)
	GetByID(ctx context.Context, id uint) (*models.Team, error)
	Exists(ctx context.Context, id uint) (bool, error)
	UpsertBySlug(ctx context.Context, team *models.Team) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) List(ctx context.Context) ([]models.Team, error) {
	return cache.Aside(ctx, cache.TeamsKey(), cache.TeamsTTL, func(ctx context.Context) ([]models.Team, error) {
		var teams []models.Team
		if err := readDB(r.db).WithContext(ctx).Order("id ASC").Find(&teams).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return teams, nil
	})
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := readDB(r.db).WithContext(ctx).First(&team, id).Error; err != nil {
		return nil, lookupError(err, "Team", id)
	}
	return &team, nil
}

func (r *teamRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// UpsertBySlug inserts the team or refreshes name, logo and city of the row with the same slug.
func (r *teamRepository) UpsertBySlug(ctx context.Context, team *models.Team) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "logo_url", "stadium_city"}),
	}).Create(team).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TeamsKey())
	return nil
}
