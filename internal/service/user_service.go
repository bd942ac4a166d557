package service

import (
	"context"

	"kbomate/internal/models"
	"kbomate/internal/repository"
	"kbomate/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
}

type UpdateProfileInput struct {
	UserID         uint
	Nickname       string
	FavoriteTeamID *uint
}

func NewUserService(userRepo repository.UserRepository, teamRepo repository.TeamRepository) *UserService {
	return &UserService{userRepo: userRepo, teamRepo: teamRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile replaces nickname and favorite team. A nil team clears the favorite.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	nickname := trimmed(in.Nickname)
	if err := validation.ValidateNickname(nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if in.FavoriteTeamID != nil {
		ok, err := s.teamRepo.Exists(ctx, *in.FavoriteTeamID)
		if err != nil {
			return nil, wrap(err)
		}
		if !ok {
			return nil, models.NewValidationError("Unknown team")
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, in.UserID, nickname, in.FavoriteTeamID); err != nil {
		return nil, wrap(err)
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

func (s *UserService) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.teamRepo.List(ctx)
}
