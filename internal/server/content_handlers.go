package server

import (
	"strings"

	"kbomate/internal/models"
	"kbomate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetActiveAnnouncements handles GET /api/announcements/active
// @Summary Announcements shown now
// @Description Matches type all, a team target equal to team_id, or a path prefix of path
// @Tags announcements
// @Produce json
// @Param path query string false "Current page path"
// @Param team_id query int false "Team being viewed"
// @Success 200 {array} models.Announcement
// @Router /announcements/active [get]
func (s *Server) GetActiveAnnouncements(c *fiber.Ctx) error {
	teamID, err := optionalUintQuery(c, "team_id")
	if err != nil {
		return respondError(c, err)
	}
	items, err := s.announcementService.Active(c.UserContext(), service.ActiveFilter{
		Path:   strings.TrimSpace(c.Query("path")),
		TeamID: teamID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetActiveBanners handles GET /api/banners/active
// @Summary Banners shown now
// @Tags banners
// @Produce json
// @Param location query string false "home or team"
// @Param team_id query int false "Team being viewed"
// @Success 200 {array} models.Banner
// @Router /banners/active [get]
func (s *Server) GetActiveBanners(c *fiber.Ctx) error {
	teamID, err := optionalUintQuery(c, "team_id")
	if err != nil {
		return respondError(c, err)
	}
	items, err := s.bannerService.Active(c.UserContext(), models.BannerLocation(c.Query("location")), teamID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// ListAnnouncements handles GET /api/admin/announcements
// @Summary List announcements
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Announcement
// @Router /admin/announcements [get]
func (s *Server) ListAnnouncements(c *fiber.Ctx) error {
	items, err := s.announcementService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// SaveAnnouncement handles POST /api/admin/announcements and PUT /api/admin/announcements/:id
// @Summary Create or update an announcement
// @Description Returns the refreshed listing ordered by priority
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Announcement true "Announcement"
// @Success 200 {array} models.Announcement
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/announcements [post]
// @Router /admin/announcements/{id} [put]
func (s *Server) SaveAnnouncement(c *fiber.Ctx) error {
	var a models.Announcement
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "Invalid request body")
	}
	a.ID = 0
	if c.Params("id") != "" {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		a.ID = id
	}

	items, err := s.announcementService.Save(c.UserContext(), currentUserID(c), &a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// DeleteAnnouncement handles DELETE /api/admin/announcements/:id
// @Summary Delete an announcement
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {array} models.Announcement
// @Router /admin/announcements/{id} [delete]
func (s *Server) DeleteAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	items, err := s.announcementService.Delete(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// ListBanners handles GET /api/admin/banners
// @Summary List banners
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Banner
// @Router /admin/banners [get]
func (s *Server) ListBanners(c *fiber.Ctx) error {
	items, err := s.bannerService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// SaveBanner handles POST /api/admin/banners and PUT /api/admin/banners/:id
// @Summary Create or update a banner
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Banner true "Banner"
// @Success 200 {array} models.Banner
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/banners [post]
// @Router /admin/banners/{id} [put]
func (s *Server) SaveBanner(c *fiber.Ctx) error {
	var b models.Banner
	if err := c.BodyParser(&b); err != nil {
		return badRequest(c, "Invalid request body")
	}
	b.ID = 0
	if c.Params("id") != "" {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		b.ID = id
	}

	items, err := s.bannerService.Save(c.UserContext(), currentUserID(c), &b)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// DeleteBanner handles DELETE /api/admin/banners/:id
// @Summary Delete a banner
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Banner ID"
// @Success 200 {array} models.Banner
// @Router /admin/banners/{id} [delete]
func (s *Server) DeleteBanner(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	items, err := s.bannerService.Delete(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
