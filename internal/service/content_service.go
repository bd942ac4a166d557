package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/notifications"
	"kbomate/internal/observability"
	"kbomate/internal/repository"
)

const maxContentTitleLen = 200

// AnnouncementService backs the admin announcements panel and the public notice bar.
type AnnouncementService struct {
	repo   repository.AnnouncementRepository
	events EventPublisher
	now    func() time.Time
}

func NewAnnouncementService(repo repository.AnnouncementRepository, events EventPublisher) *AnnouncementService {
	return &AnnouncementService{repo: repo, events: events, now: time.Now}
}

// List returns every announcement in display order: priority ASC, then id.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	return s.repo.List(ctx)
}

func validateAnnouncement(a *models.Announcement) error {
	a.Title = trimmed(a.Title)
	if a.Title == "" {
		return models.NewValidationError("Title is required")
	}
	if runeLen(a.Title) > maxContentTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if a.Type == "" {
		a.Type = models.AnnouncementAll
	}
	if a.Target != nil {
		t := trimmed(*a.Target)
		if t == "" {
			a.Target = nil
		} else {
			a.Target = &t
		}
	}

	switch a.Type {
	case models.AnnouncementAll:
		a.Target = nil
	case models.AnnouncementTeam:
		if a.Target == nil {
			return models.NewValidationError("Team announcements need a target team id")
		}
		if _, err := strconv.ParseUint(*a.Target, 10, 32); err != nil {
			return models.NewValidationError("Team target must be a team id")
		}
	case models.AnnouncementPath:
		if a.Target == nil || !strings.HasPrefix(*a.Target, "/") {
			return models.NewValidationError("Path target must start with /")
		}
	default:
		return models.NewValidationError("Invalid announcement type")
	}

	if a.Priority == 0 {
		a.Priority = 1
	}
	if a.Priority < 1 {
		return models.NewValidationError("Priority must be at least 1")
	}
	return validateWindow(a.StartDate, a.EndDate)
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return models.NewValidationError("End date must not be before start date")
	}
	return nil
}

// Save inserts when a.ID is zero and updates otherwise, then returns the refreshed list.
func (s *AnnouncementService) Save(ctx context.Context, actorID uint, a *models.Announcement) ([]models.Announcement, error) {
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}
	action := "update"
	if a.ID == 0 {
		action = "create"
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, wrap(err)
	}

	observability.AdminActions.WithLabelValues("announcements", action).Inc()
	observability.Audit.Record(ctx, actorID, "announcement."+action, "announcement", a.ID,
		map[string]any{"title": a.Title, "type": a.Type})
	s.broadcastChange(ctx, a.ID, action)
	return s.repo.List(ctx)
}

func (s *AnnouncementService) Delete(ctx context.Context, actorID, id uint) ([]models.Announcement, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, wrap(err)
	}
	observability.AdminActions.WithLabelValues("announcements", "delete").Inc()
	observability.Audit.Record(ctx, actorID, "announcement.delete", "announcement", id, nil)
	s.broadcastChange(ctx, id, "delete")
	return s.repo.List(ctx)
}

func (s *AnnouncementService) broadcastChange(ctx context.Context, id uint, action string) {
	if s.events == nil {
		return
	}
	publish(ctx, func() error {
		return s.events.NotifyAll(ctx, notifications.EventAnnouncementChanged, map[string]any{"id": id, "action": action})
	})
}

// ActiveFilter narrows the public notice bar to a page.
type ActiveFilter struct {
	Path   string
	TeamID *uint
}

// Active returns announcements shown right now on the page described by f.
func (s *AnnouncementService) Active(ctx context.Context, f ActiveFilter) ([]models.Announcement, error) {
	now := s.now()
	all, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return nil, wrap(err)
	}

	out := make([]models.Announcement, 0, len(all))
	for _, a := range all {
		if !a.ActiveAt(now) {
			continue
		}
		if matchesTarget(a.Type, a.Target, f) {
			out = append(out, a)
		}
	}
	return out, nil
}

func matchesTarget(kind models.AnnouncementType, target *string, f ActiveFilter) bool {
	switch kind {
	case models.AnnouncementAll:
		return true
	case models.AnnouncementTeam:
		return target != nil && f.TeamID != nil && *target == strconv.FormatUint(uint64(*f.TeamID), 10)
	case models.AnnouncementPath:
		return target != nil && f.Path != "" && strings.HasPrefix(f.Path, *target)
	}
	return false
}

// BannerService backs the admin banners panel and the public banner slots.
type BannerService struct {
	repo repository.BannerRepository
	now  func() time.Time
}

func NewBannerService(repo repository.BannerRepository) *BannerService {
	return &BannerService{repo: repo, now: time.Now}
}

func (s *BannerService) List(ctx context.Context) ([]models.Banner, error) {
	return s.repo.List(ctx)
}

func validateBanner(b *models.Banner) error {
	b.Title = trimmed(b.Title)
	if b.Title == "" {
		return models.NewValidationError("Title is required")
	}
	if runeLen(b.Title) > maxContentTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if b.Location == "" {
		b.Location = models.BannerHome
	}
	if b.Location != models.BannerHome && b.Location != models.BannerTeam {
		return models.NewValidationError("Invalid banner location")
	}
	if b.Location == models.BannerTeam && b.Target != nil {
		if _, err := strconv.ParseUint(trimmed(*b.Target), 10, 32); err != nil {
			return models.NewValidationError("Team banner target must be a team id")
		}
	}
	if b.Priority == 0 {
		b.Priority = 1
	}
	if b.Priority < 1 {
		return models.NewValidationError("Priority must be at least 1")
	}
	if b.IsActive == nil {
		active := true
		b.IsActive = &active
	}
	return validateWindow(b.StartDate, b.EndDate)
}

func (s *BannerService) Save(ctx context.Context, actorID uint, b *models.Banner) ([]models.Banner, error) {
	if err := validateBanner(b); err != nil {
		return nil, err
	}
	action := "update"
	if b.ID == 0 {
		action = "create"
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, wrap(err)
	}
	observability.AdminActions.WithLabelValues("banners", action).Inc()
	observability.Audit.Record(ctx, actorID, "banner."+action, "banner", b.ID,
		map[string]any{"title": b.Title, "location": b.Location, "is_active": b.Enabled()})
	return s.repo.List(ctx)
}

func (s *BannerService) Delete(ctx context.Context, actorID, id uint) ([]models.Banner, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, wrap(err)
	}
	observability.AdminActions.WithLabelValues("banners", "delete").Inc()
	observability.Audit.Record(ctx, actorID, "banner.delete", "banner", id, nil)
	return s.repo.List(ctx)
}

// Active returns banners to render now in location. Team banners with a target only
// show for that team.
func (s *BannerService) Active(ctx context.Context, location models.BannerLocation, teamID *uint) ([]models.Banner, error) {
	if location != "" && location != models.BannerHome && location != models.BannerTeam {
		return nil, models.NewValidationError("Invalid banner location")
	}
	now := s.now()
	all, err := s.repo.ListActive(ctx, location, now)
	if err != nil {
		return nil, wrap(err)
	}

	out := make([]models.Banner, 0, len(all))
	for _, b := range all {
		if !b.ActiveAt(now) {
			continue
		}
		if b.Location == models.BannerTeam && b.Target != nil &&
			(teamID == nil || trimmed(*b.Target) != strconv.FormatUint(uint64(*teamID), 10)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
