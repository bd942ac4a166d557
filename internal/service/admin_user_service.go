package service

import (
	"context"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/observability"
	"kbomate/internal/repository"
)

const (
	detailRecentLimit = 5
	maxBanDays        = 3650
)

// AdminUserService backs the admin users panel.
type AdminUserService struct {
	users   repository.UserRepository
	posts   repository.MatePostRepository
	reports repository.ReportRepository
	bans    repository.BanRepository
	now     func() time.Time
}

func NewAdminUserService(
	users repository.UserRepository,
	posts repository.MatePostRepository,
	reports repository.ReportRepository,
	bans repository.BanRepository,
) *AdminUserService {
	return &AdminUserService{users: users, posts: posts, reports: reports, bans: bans, now: time.Now}
}

func (s *AdminUserService) ListMembers(ctx context.Context, page int) (*Page[models.User], error) {
	page = normalizePage(page)
	users, total, err := s.users.ListMembers(ctx, page, MemberPageSize)
	if err != nil {
		return nil, wrap(err)
	}
	return &Page[models.User]{Items: users, Total: total, Page: page, PageSize: MemberPageSize}, nil
}

// UserDetail is the side panel opened from the member list.
type UserDetail struct {
	User          *models.User      `json:"user"`
	RecentPosts   []models.MatePost `json:"recent_posts"`
	RecentReports []models.Report   `json:"recent_reports"`
	ActiveBans    []models.UserBan  `json:"active_bans"`
}

func (s *AdminUserService) Detail(ctx context.Context, userID uint) (*UserDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrap(err)
	}
	posts, err := s.posts.ListByUser(ctx, userID, detailRecentLimit)
	if err != nil {
		return nil, wrap(err)
	}
	reports, err := s.reports.ListByReporter(ctx, userID, detailRecentLimit)
	if err != nil {
		return nil, wrap(err)
	}
	bans, err := s.bans.ActiveForUser(ctx, userID, s.now())
	if err != nil {
		return nil, wrap(err)
	}
	return &UserDetail{User: user, RecentPosts: posts, RecentReports: reports, ActiveBans: bans}, nil
}

type BanInput struct {
	ActorID uint
	UserID  uint
	Days    int
	Reason  string
}

// Ban suspends a user from now for Days days.
func (s *AdminUserService) Ban(ctx context.Context, in BanInput) (*models.UserBan, error) {
	if in.Days < 1 || in.Days > maxBanDays {
		return nil, models.NewValidationError("days must be between 1 and 3650")
	}
	if in.ActorID == in.UserID {
		return nil, models.NewValidationError("You cannot ban yourself")
	}
	target, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, wrap(err)
	}
	if target.Role == models.RoleAdmin {
		return nil, models.NewForbiddenError("Admins cannot be banned")
	}

	reason := trimmed(in.Reason)
	if reason == "" {
		reason = models.DefaultBanReason
	}
	reason = truncateRunes(reason, 255)

	start := s.now()
	actor := in.ActorID
	ban := &models.UserBan{
		UserID:    in.UserID,
		StartAt:   start,
		EndAt:     start.AddDate(0, 0, in.Days),
		Reason:    reason,
		CreatedBy: &actor,
	}
	if err := s.bans.Create(ctx, ban); err != nil {
		return nil, wrap(err)
	}

	observability.AdminActions.WithLabelValues("users", "ban").Inc()
	observability.Audit.Record(ctx, in.ActorID, "user.ban", "user", in.UserID,
		map[string]any{"ban_id": ban.ID, "days": in.Days, "reason": reason})
	return ban, nil
}

func (s *AdminUserService) Unban(ctx context.Context, actorID, banID uint) error {
	if err := s.bans.Delete(ctx, banID); err != nil {
		return wrap(err)
	}
	observability.AdminActions.WithLabelValues("users", "unban").Inc()
	observability.Audit.Record(ctx, actorID, "user.unban", "ban", banID, nil)
	return nil
}
