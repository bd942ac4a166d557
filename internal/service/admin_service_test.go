package service

import (
	"context"
	"testing"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAnnouncementService_SaveReturnsListByPriority(t *testing.T) {
	repo := &announcementRepoStub{}
	events := &eventsStub{}
	svc := NewAnnouncementService(repo, events)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, &models.Announcement{Title: "개막전 안내", Priority: 2})
	require.NoError(t, err)
	list, err := svc.Save(ctx, 1, &models.Announcement{Title: "점검 공지"})
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, 1, list[1].Priority, "priority defaults to 1")
	require.Len(t, events.all, 2)
	assert.Equal(t, notifications.EventAnnouncementChanged, events.all[0].eventType)

	list, err = svc.Delete(ctx, 1, list[0].ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAnnouncementService_Validation(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{}, nil)
	start := time.Now()
	end := start.Add(-time.Hour)

	tests := []struct {
		name string
		a    models.Announcement
	}{
		{"no title", models.Announcement{}},
		{"team without target", models.Announcement{Title: "t", Type: models.AnnouncementTeam}},
		{"team with text target", models.Announcement{Title: "t", Type: models.AnnouncementTeam, Target: strPtr("lg")}},
		{"path without slash", models.Announcement{Title: "t", Type: models.AnnouncementPath, Target: strPtr("mate")}},
		{"negative priority", models.Announcement{Title: "t", Priority: -1}},
		{"end before start", models.Announcement{Title: "t", StartDate: &start, EndDate: &end}},
		{"unknown type", models.Announcement{Title: "t", Type: "popup"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.a
			_, err := svc.Save(context.Background(), 1, &a)
			assertValidationError(t, err)
		})
	}
}

func TestAnnouncementService_ActiveFiltersTargets(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &announcementRepoStub{items: []models.Announcement{
		{ID: 1, Title: "all", Type: models.AnnouncementAll},
		{ID: 2, Title: "lg", Type: models.AnnouncementTeam, Target: strPtr("1")},
		{ID: 3, Title: "mate", Type: models.AnnouncementPath, Target: strPtr("/mate")},
		{ID: 4, Title: "expired", Type: models.AnnouncementAll, EndDate: &past},
	}}
	svc := NewAnnouncementService(repo, nil)
	team := uint(1)

	got, err := svc.Active(context.Background(), ActiveFilter{Path: "/mate/3", TeamID: &team})
	require.NoError(t, err)
	ids := make([]uint, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []uint{1, 2, 3}, ids)

	got, err = svc.Active(context.Background(), ActiveFilter{Path: "/weather"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestAdminUserService_BanSpansDays(t *testing.T) {
	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleUser}, nil
		},
	}
	bans := &banRepoStub{}
	svc := NewAdminUserService(users, &matePostRepoStub{}, &reportRepoStub{}, bans)
	start := time.Date(2026, 3, 28, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	ban, err := svc.Ban(context.Background(), BanInput{ActorID: 1, UserID: 2, Days: 7})
	require.NoError(t, err)
	require.Len(t, bans.created, 1)
	assert.Equal(t, start, ban.StartAt)
	assert.Equal(t, start.AddDate(0, 0, 7), ban.EndAt)
	assert.Equal(t, models.DefaultBanReason, ban.Reason)
	require.NotNil(t, ban.CreatedBy)
	assert.Equal(t, uint(1), *ban.CreatedBy)
}

func TestAdminUserService_BanRejects(t *testing.T) {
	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleAdmin}, nil
		},
	}
	svc := NewAdminUserService(users, &matePostRepoStub{}, &reportRepoStub{}, &banRepoStub{})
	ctx := context.Background()

	_, err := svc.Ban(ctx, BanInput{ActorID: 1, UserID: 2, Days: 0})
	assertValidationError(t, err)
	_, err = svc.Ban(ctx, BanInput{ActorID: 1, UserID: 2, Days: 3651})
	assertValidationError(t, err)
	_, err = svc.Ban(ctx, BanInput{ActorID: 2, UserID: 2, Days: 1})
	assertValidationError(t, err)
	_, err = svc.Ban(ctx, BanInput{ActorID: 1, UserID: 2, Days: 1})
	assertForbiddenError(t, err)
}

func TestDiffPageRoles(t *testing.T) {
	dash := models.AdminPageRole{PageKey: models.PageDashboard, Role: models.RoleModerator}
	reports := models.AdminPageRole{PageKey: models.PageReports, Role: models.RoleModerator}
	users := models.AdminPageRole{PageKey: models.PageUsers, Role: models.RoleModerator}

	added, removed := DiffPageRoles(
		[]models.AdminPageRole{dash, reports},
		[]models.AdminPageRole{dash, users, users},
	)
	assert.Equal(t, []models.AdminPageRole{users}, added)
	assert.Equal(t, []models.AdminPageRole{reports}, removed)

	added, removed = DiffPageRoles([]models.AdminPageRole{dash}, []models.AdminPageRole{dash})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestRoleService_SavePageRoles(t *testing.T) {
	dash := models.AdminPageRole{PageKey: models.PageDashboard, Role: models.RoleModerator}
	banners := models.AdminPageRole{PageKey: models.PageBanners, Role: models.RoleModerator}
	repo := &pageRoleRepoStub{pairs: []models.AdminPageRole{dash}}
	svc := NewRoleService(&userRepoStub{}, repo)
	ctx := context.Background()

	diff, err := svc.SavePageRoles(ctx, 1, []models.AdminPageRole{dash}, []models.AdminPageRole{dash, banners})
	require.NoError(t, err)
	assert.Equal(t, []models.AdminPageRole{banners}, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Equal(t, 1, repo.calls)

	_, err = svc.SavePageRoles(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "an empty diff writes nothing")

	_, err = svc.SavePageRoles(ctx, 1, nil, []models.AdminPageRole{{PageKey: "billing", Role: models.RoleModerator}})
	assertValidationError(t, err)
}

func TestRoleService_SaveRolesOnlyWritesChanges(t *testing.T) {
	staff := []models.User{
		{ID: 1, Role: models.RoleAdmin},
		{ID: 2, Role: models.RoleModerator},
		{ID: 3, Role: models.RoleModerator},
	}
	var updated []uint
	users := &userRepoStub{
		listStaffFn: func(context.Context) ([]models.User, error) { return staff, nil },
		updateRoleFn: func(_ context.Context, id uint, _ models.Role) error {
			updated = append(updated, id)
			return nil
		},
	}
	svc := NewRoleService(users, &pageRoleRepoStub{})
	ctx := context.Background()

	_, n, err := svc.SaveRoles(ctx, 1, []RoleChange{
		{UserID: 1, Role: models.RoleAdmin},
		{UserID: 2, Role: models.RoleModerator},
		{UserID: 3, Role: models.RoleUser},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uint{3}, updated)

	_, _, err = svc.SaveRoles(ctx, 1, []RoleChange{{UserID: 1, Role: models.RoleUser}})
	assertValidationError(t, err)
	_, _, err = svc.SaveRoles(ctx, 1, []RoleChange{{UserID: 2, Role: "owner"}})
	assertValidationError(t, err)
}

func TestRoleService_CanAccessPage(t *testing.T) {
	repo := &pageRoleRepoStub{pairs: []models.AdminPageRole{{PageKey: models.PageReports, Role: models.RoleModerator}}}
	svc := NewRoleService(&userRepoStub{}, repo)
	ctx := context.Background()

	ok, _ := svc.CanAccessPage(ctx, models.RoleAdmin, models.PageRoles)
	assert.True(t, ok)
	ok, _ = svc.CanAccessPage(ctx, models.RoleModerator, models.PageReports)
	assert.True(t, ok)
	ok, _ = svc.CanAccessPage(ctx, models.RoleModerator, models.PageRoles)
	assert.False(t, ok)
	ok, _ = svc.CanAccessPage(ctx, models.RoleUser, models.PageReports)
	assert.False(t, ok)
}

func TestReportService_Heatmap(t *testing.T) {
	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC) // 2026-04-11 00:00 KST
	repo := &reportRepoStub{stamps: []time.Time{
		time.Date(2026, 4, 9, 16, 0, 0, 0, time.UTC),   // 04-10 KST
		time.Date(2026, 4, 10, 14, 59, 0, 0, time.UTC), // 04-10 KST
		time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC), // 04-11 KST
	}}
	svc := NewReportService(repo, &matePostRepoStub{}, &mateCommentRepoStub{}, &userRepoStub{})
	svc.now = func() time.Time { return now }

	days, err := svc.Heatmap(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []models.ReportDayCount{
		{Date: "2026-04-09", Count: 0},
		{Date: "2026-04-10", Count: 2},
		{Date: "2026-04-11", Count: 1},
	}, days)
	assert.Equal(t, time.Date(2026, 4, 9, 0, 0, 0, 0, KST).Unix(), repo.since.Unix())

	_, err = svc.Heatmap(context.Background(), 0)
	assertValidationError(t, err)
}

func TestReportService_CreateFillsAuthorAndPreview(t *testing.T) {
	posts := &matePostRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.MatePost, error) {
			return &models.MatePost{ID: id, UserID: 7, Title: "제목", Content: "본문"}, nil
		},
	}
	repo := &reportRepoStub{}
	svc := NewReportService(repo, posts, &mateCommentRepoStub{}, &userRepoStub{})

	r, err := svc.Create(context.Background(), CreateReportInput{
		ReporterID: 2, TargetType: models.ReportTargetPost, TargetID: 5, Reason: "광고",
	})
	require.NoError(t, err)
	require.NotNil(t, r.UserID)
	assert.Equal(t, uint(7), *r.UserID)
	assert.Equal(t, "제목 본문", r.ContentPreview)
	assert.Equal(t, models.ReportStatusPending, r.Status)

	_, err = svc.Create(context.Background(), CreateReportInput{
		ReporterID: 7, TargetType: models.ReportTargetPost, TargetID: 5, Reason: "x",
	})
	assertValidationError(t, err)
}

func TestReportService_ListFilters(t *testing.T) {
	repo := &reportRepoStub{}
	svc := NewReportService(repo, &matePostRepoStub{}, &mateCommentRepoStub{}, &userRepoStub{})

	_, err := svc.List(context.Background(), ListReportsInput{Status: "pending", TargetType: "comment", Page: 3})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, repo.filter.Status)
	assert.Equal(t, models.ReportTargetComment, repo.filter.TargetType)
	assert.Equal(t, 3, repo.filter.Page)
	assert.Equal(t, ReportPageSize, repo.filter.PageSize)

	_, err = svc.List(context.Background(), ListReportsInput{Status: "archived"})
	assertValidationError(t, err)
	_, err = svc.List(context.Background(), ListReportsInput{SortBy: "reason"})
	assertValidationError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	var gotNick string
	users := &userRepoStub{
		updateProfileFn: func(_ context.Context, _ uint, nick string, _ *uint) error {
			gotNick = nick
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
	}
	svc := NewUserService(users, &teamRepoStub{exists: map[uint]bool{2: true}})
	team := uint(2)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Nickname: " 엘지팬 ", FavoriteTeamID: &team})
	require.NoError(t, err)
	assert.Equal(t, "엘지팬", gotNick)

	bad := uint(99)
	_, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Nickname: "엘지팬", FavoriteTeamID: &bad})
	assertValidationError(t, err)
	_, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Nickname: "a"})
	assertValidationError(t, err)
}

func TestDashboardService_Stats(t *testing.T) {
	users := &userRepoStub{countFn: func(context.Context) (int64, error) { return 42, nil }}
	bans := &banRepoStub{active: []models.UserBan{{ID: 1}}}
	svc := NewDashboardService(users, &matePostRepoStub{}, &reportRepoStub{}, bans)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.Users)
	assert.Equal(t, int64(1), stats.ActiveBans)
}
