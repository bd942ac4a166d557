package server

import (
	"kbomate/internal/models"
	"kbomate/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultHeatmapDays = 30

// GetMyAdminPages handles GET /api/admin/pages
// @Summary Admin pages the caller may open
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{role=string,pages=[]string}
// @Router /admin/pages [get]
func (s *Server) GetMyAdminPages(c *fiber.Ctx) error {
	role := models.Role(currentRole(c))
	pages := make([]string, 0, len(models.AdminPages))
	for _, key := range models.AdminPages {
		ok, err := s.roleService.CanAccessPage(c.UserContext(), role, key)
		if err != nil {
			return respondError(c, err)
		}
		if ok {
			pages = append(pages, key)
		}
	}
	return c.JSON(fiber.Map{"role": role, "pages": pages})
}

// GetDashboard handles GET /api/admin/dashboard
// @Summary Dashboard counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Router /admin/dashboard [get]
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	stats, err := s.dashboardService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// ListReports handles GET /api/admin/reports
// @Summary List reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (20 per page)"
// @Param target_type query string false "post, comment or user"
// @Param status query string false "pending, resolved, rejected or deleted"
// @Param sort_by query string false "created_at or status"
// @Success 200 {object} object{items=[]models.Report,total=int,page=int,page_size=int}
// @Router /admin/reports [get]
func (s *Server) ListReports(c *fiber.Ctx) error {
	page, err := s.reportService.List(c.UserContext(), service.ListReportsInput{
		TargetType: c.Query("target_type"),
		Status:     c.Query("status"),
		SortBy:     c.Query("sort_by"),
		Page:       pageQuery(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetReportHeatmap handles GET /api/admin/reports/heatmap
// @Summary Reports per day
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (default 30)"
// @Success 200 {array} models.ReportDayCount
// @Router /admin/reports/heatmap [get]
func (s *Server) GetReportHeatmap(c *fiber.Ctx) error {
	counts, err := s.reportService.Heatmap(c.UserContext(), c.QueryInt("days", defaultHeatmapDays))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}

// UpdateReportStatus handles PATCH /api/admin/reports/:id/status
// @Summary Resolve, reject or reopen a report
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} object{message=string}
// @Router /admin/reports/{id}/status [patch]
func (s *Server) UpdateReportStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.reportService.UpdateStatus(c.UserContext(), currentUserID(c), id, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report updated"})
}

// DeleteReport handles DELETE /api/admin/reports/:id
// @Summary Delete a report
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} object{message=string}
// @Router /admin/reports/{id} [delete]
func (s *Server) DeleteReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.reportService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report deleted"})
}

// CreateReport handles POST /api/reports
// @Summary Report a post, comment or user
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{target_type=string,target_id=int,reason=string} true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req struct {
		TargetType models.ReportTargetType `json:"target_type"`
		TargetID   uint                    `json:"target_id"`
		Reason     string                  `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := s.reportService.Create(c.UserContext(), service.CreateReportInput{
		ReporterID: currentUserID(c),
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListMembers handles GET /api/admin/users
// @Summary List members
// @Description Accounts with role user, newest first, with their mate post count
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Success 200 {object} object{items=[]models.User,total=int,page=int,page_size=int}
// @Router /admin/users [get]
func (s *Server) ListMembers(c *fiber.Ctx) error {
	page, err := s.adminUserService.ListMembers(c.UserContext(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetMemberDetail handles GET /api/admin/users/:id
// @Summary Member detail
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} service.UserDetail
// @Router /admin/users/{id} [get]
func (s *Server) GetMemberDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.adminUserService.Detail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// BanMember handles POST /api/admin/users/:id/bans
// @Summary Suspend a member
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{days=int,reason=string} true "Ban"
// @Success 201 {object} models.UserBan
// @Router /admin/users/{id}/bans [post]
func (s *Server) BanMember(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Days   int    `json:"days"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ban, err := s.adminUserService.Ban(c.UserContext(), service.BanInput{
		ActorID: currentUserID(c),
		UserID:  id,
		Days:    req.Days,
		Reason:  req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ban)
}

// UnbanMember handles DELETE /api/admin/users/bans/:banId
// @Summary Lift a ban
// @Tags admin
// @Security BearerAuth
// @Param banId path int true "Ban ID"
// @Success 200 {object} object{message=string}
// @Router /admin/users/bans/{banId} [delete]
func (s *Server) UnbanMember(c *fiber.Ctx) error {
	banID, err := s.parseID(c, "banId")
	if err != nil {
		return nil
	}
	if err := s.adminUserService.Unban(c.UserContext(), currentUserID(c), banID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ban lifted"})
}

// ListStaff handles GET /api/admin/roles
// @Summary Users with their roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /admin/roles [get]
func (s *Server) ListStaff(c *fiber.Ctx) error {
	users, err := s.roleService.ListStaff(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// SaveRoles handles PUT /api/admin/roles
// @Summary Change user roles
// @Description Only rows whose role differs are written
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{changes=[]service.RoleChange} true "Role changes"
// @Success 200 {object} object{users=[]models.User,changed=int}
// @Router /admin/roles [put]
func (s *Server) SaveRoles(c *fiber.Ctx) error {
	var req struct {
		Changes []service.RoleChange `json:"changes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	users, changed, err := s.roleService.SaveRoles(c.UserContext(), currentUserID(c), req.Changes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "changed": changed})
}

// GetPageRoles handles GET /api/admin/roles/pages
// @Summary Page access pairs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{pages=[]string,pairs=[]models.AdminPageRole}
// @Router /admin/roles/pages [get]
func (s *Server) GetPageRoles(c *fiber.Ctx) error {
	pairs, err := s.roleService.PageRoles(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"pages": models.AdminPages, "pairs": pairs})
}

// SavePageRoles handles PUT /api/admin/roles/pages
// @Summary Save page access
// @Description Applies updated minus original as inserts and original minus updated as deletes
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{original=[]models.AdminPageRole,updated=[]models.AdminPageRole} true "Snapshot and edit"
// @Success 200 {object} service.PageRoleDiff
// @Router /admin/roles/pages [put]
func (s *Server) SavePageRoles(c *fiber.Ctx) error {
	var req struct {
		Original []models.AdminPageRole `json:"original"`
		Updated  []models.AdminPageRole `json:"updated"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	diff, err := s.roleService.SavePageRoles(c.UserContext(), currentUserID(c), req.Original, req.Updated)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(diff)
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
