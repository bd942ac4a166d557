package server

import (
	"kbomate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user profile
// @Description Sets nickname and favorite team. A null favorite_team_id clears it.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{nickname=string,favorite_team_id=integer} true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Nickname       string `json:"nickname"`
		FavoriteTeamID *uint  `json:"favorite_team_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         currentUserID(c),
		Nickname:       req.Nickname,
		FavoriteTeamID: req.FavoriteTeamID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetTeams handles GET /api/teams
// @Summary List KBO teams
// @Tags teams
// @Produce json
// @Success 200 {array} models.Team
// @Router /teams [get]
func (s *Server) GetTeams(c *fiber.Ctx) error {
	teams, err := s.userService.ListTeams(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(teams)
}
