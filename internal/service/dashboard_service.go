package service

import (
	"context"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/repository"
)

// DashboardStats are the headline counters on the admin landing page.
type DashboardStats struct {
	Users          int64 `json:"users"`
	MatePosts      int64 `json:"mate_posts"`
	PendingReports int64 `json:"pending_reports"`
	ActiveBans     int64 `json:"active_bans"`
}

type DashboardService struct {
	users   repository.UserRepository
	posts   repository.MatePostRepository
	reports repository.ReportRepository
	bans    repository.BanRepository
	now     func() time.Time
}

func NewDashboardService(
	users repository.UserRepository,
	posts repository.MatePostRepository,
	reports repository.ReportRepository,
	bans repository.BanRepository,
) *DashboardService {
	return &DashboardService{users: users, posts: posts, reports: reports, bans: bans, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	var err error
	if out.Users, err = s.users.Count(ctx); err != nil {
		return nil, wrap(err)
	}
	if out.MatePosts, err = s.posts.Count(ctx); err != nil {
		return nil, wrap(err)
	}
	if out.PendingReports, err = s.reports.CountByStatus(ctx, models.ReportStatusPending); err != nil {
		return nil, wrap(err)
	}
	if out.ActiveBans, err = s.bans.CountActive(ctx, s.now()); err != nil {
		return nil, wrap(err)
	}
	return &out, nil
}
