package server

import (
	"net/http"
	"testing"

	"kbomate/internal/models"
	"kbomate/internal/service"
	"kbomate/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	env       *testEnv
	admin     *models.User
	moderator *models.User
	member    *models.User
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	env := newTestEnv(t)
	return &adminFixture{
		env:       env,
		admin:     testutil.CreateUser(t, env.db, "admin@example.com", "admin2026", models.RoleAdmin),
		moderator: testutil.CreateUser(t, env.db, "mod@example.com", "guard2026", models.RoleModerator),
		member:    testutil.CreateUser(t, env.db, "fan@example.com", "heroes2026", models.RoleUser),
	}
}

func TestAdminAccess(t *testing.T) {
	f := newAdminFixture(t)

	tests := []struct {
		name   string
		user   *models.User
		path   string
		status int
	}{
		{"member is not staff", f.member, "/api/admin/pages", http.StatusForbidden},
		{"moderator lists own pages", f.moderator, "/api/admin/pages", http.StatusOK},
		{"moderator without page pair", f.moderator, "/api/admin/reports", http.StatusForbidden},
		{"moderator cannot read flags", f.moderator, "/api/admin/feature-flags", http.StatusForbidden},
		{"admin passes every page", f.admin, "/api/admin/dashboard", http.StatusOK},
		{"admin reads flags", f.admin, "/api/admin/feature-flags", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.do(http.MethodGet, tt.path, f.env.token(tt.user), nil)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestSavePageRoles_GrantsModeratorAccess(t *testing.T) {
	f := newAdminFixture(t)
	env := f.env
	modToken := env.token(f.moderator)

	resp := env.do(http.MethodGet, "/api/admin/reports", modToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	grant := models.AdminPageRole{PageKey: models.PageReports, Role: models.RoleModerator}
	resp = env.do(http.MethodPut, "/api/admin/roles/pages", env.token(f.admin), map[string]any{
		"original": []models.AdminPageRole{},
		"updated":  []models.AdminPageRole{grant},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	diff := decode[service.PageRoleDiff](t, resp)
	assert.Equal(t, []models.AdminPageRole{grant}, diff.Added)
	assert.Empty(t, diff.Removed)

	resp = env.do(http.MethodGet, "/api/admin/reports", modToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/pages", modToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pages := decode[struct {
		Role  string   `json:"role"`
		Pages []string `json:"pages"`
	}](t, resp)
	assert.Equal(t, "moderator", pages.Role)
	assert.Equal(t, []string{models.PageReports}, pages.Pages)

	// Moderators can open the roles page only when granted, and never save it.
	resp = env.do(http.MethodPut, "/api/admin/roles/pages", modToken, map[string]any{
		"original": []models.AdminPageRole{grant},
		"updated":  []models.AdminPageRole{},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSavePageRoles_RejectsUnknownPage(t *testing.T) {
	f := newAdminFixture(t)
	resp := f.env.do(http.MethodPut, "/api/admin/roles/pages", f.env.token(f.admin), map[string]any{
		"original": []models.AdminPageRole{},
		"updated":  []models.AdminPageRole{{PageKey: "billing", Role: models.RoleModerator}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveRoles_DemotionAppliesImmediately(t *testing.T) {
	f := newAdminFixture(t)
	env := f.env
	modToken := env.token(f.moderator)

	resp := env.do(http.MethodGet, "/api/admin/pages", modToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPut, "/api/admin/roles", env.token(f.admin), map[string]any{
		"changes": []service.RoleChange{
			{UserID: f.moderator.ID, Role: models.RoleUser},
			{UserID: f.member.ID, Role: models.RoleUser},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, float64(1), body["changed"])

	// The token still says moderator; the stored role wins.
	resp = env.do(http.MethodGet, "/api/admin/pages", modToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSaveRoles_CannotDropOwnAdmin(t *testing.T) {
	f := newAdminFixture(t)
	resp := f.env.do(http.MethodPut, "/api/admin/roles", f.env.token(f.admin), map[string]any{
		"changes": []service.RoleChange{{UserID: f.admin.ID, Role: models.RoleModerator}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReports_FileListResolveDelete(t *testing.T) {
	f := newAdminFixture(t)
	env := f.env
	team := testutil.CreateTeam(t, env.db, "LG 트윈스", "lg-twins")
	post := testutil.CreateMatePost(t, env.db, f.member.ID, team.ID, "잠실 직관 가실 분")
	adminToken := env.token(f.admin)

	reporter := testutil.CreateUser(t, env.db, "reporter@example.com", "tigers2026", models.RoleUser)
	resp := env.do(http.MethodPost, "/api/reports", env.token(reporter), map[string]any{
		"target_type": "post", "target_id": post.ID, "reason": "광고글",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	report := decode[models.Report](t, resp)
	require.NotNil(t, report.UserID)
	assert.Equal(t, f.member.ID, *report.UserID)
	assert.Equal(t, models.ReportStatusPending, report.Status)

	resp = env.do(http.MethodPost, "/api/reports", env.token(f.member), map[string]any{
		"target_type": "post", "target_id": post.ID, "reason": "내 글",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/reports", env.token(reporter), map[string]any{
		"target_type": "post", "target_id": 9999, "reason": "없음",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/reports?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[service.Page[models.Report]](t, resp)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)

	resp = env.do(http.MethodGet, "/api/admin/reports/heatmap?days=7", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPatch, "/api/admin/reports/"+itoa(report.ID)+"/status", adminToken,
		map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/reports?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[service.Page[models.Report]](t, resp).Items)

	resp = env.do(http.MethodDelete, "/api/admin/reports/"+itoa(report.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/reports", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[service.Page[models.Report]](t, resp).Items)
}

func TestMembers_BanAndUnban(t *testing.T) {
	f := newAdminFixture(t)
	env := f.env
	adminToken := env.token(f.admin)

	resp := env.do(http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	members := decode[service.Page[models.User]](t, resp)
	require.Len(t, members.Items, 1)
	assert.Equal(t, f.member.ID, members.Items[0].ID)

	resp = env.do(http.MethodPost, "/api/admin/users/"+itoa(f.admin.ID)+"/bans", adminToken,
		map[string]any{"days": 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/admin/users/"+itoa(f.member.ID)+"/bans", adminToken,
		map[string]any{"days": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/admin/users/"+itoa(f.member.ID)+"/bans", adminToken,
		map[string]any{"days": 3, "reason": "도배"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ban := decode[models.UserBan](t, resp)

	resp = env.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "fan@example.com", "password": "heroes2026",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/users/"+itoa(f.member.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[service.UserDetail](t, resp)
	require.Len(t, detail.ActiveBans, 1)

	resp = env.do(http.MethodDelete, "/api/admin/users/bans/"+itoa(ban.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "fan@example.com", "password": "heroes2026",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[service.DashboardStats](t, resp)
	assert.Equal(t, int64(0), stats.ActiveBans)
}

func TestAnnouncementsAndBanners(t *testing.T) {
	f := newAdminFixture(t)
	env := f.env
	adminToken := env.token(f.admin)

	resp := env.do(http.MethodPost, "/api/admin/announcements", adminToken, map[string]any{
		"title": "우천 취소 안내", "content": "오늘 경기는 취소되었습니다", "type": "all", "priority": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Announcement](t, resp)
	require.Len(t, list, 1)

	resp = env.do(http.MethodPost, "/api/admin/announcements", adminToken, map[string]any{
		"title": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/announcements/active?path=/mate", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	active := decode[[]models.Announcement](t, resp)
	require.Len(t, active, 1)
	assert.Equal(t, "우천 취소 안내", active[0].Title)

	resp = env.do(http.MethodPut, "/api/admin/announcements/"+itoa(list[0].ID), adminToken, map[string]any{
		"title": "우천 취소 안내 (수정)", "type": "all",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodDelete, "/api/admin/announcements/"+itoa(list[0].ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Announcement](t, resp))

	resp = env.do(http.MethodPost, "/api/admin/banners", adminToken, map[string]any{
		"title": "가을야구", "location": "home", "is_active": true, "image_url": "https://img.example.com/b.webp",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/banners/active?location=home", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Banner](t, resp), 1)

	resp = env.do(http.MethodGet, "/api/banners/active?location=team&team_id=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Banner](t, resp))
}

func TestSaveBanner_OmittedIsActiveDefaultsToEnabled(t *testing.T) {
	f := newAdminFixture(t)
	env := f.env
	adminToken := env.token(f.admin)

	resp := env.do(http.MethodPost, "/api/admin/banners", adminToken, map[string]any{
		"title": "올스타전", "location": "home",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[[]models.Banner](t, resp)
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].IsActive)
	assert.True(t, *saved[0].IsActive)

	resp = env.do(http.MethodPost, "/api/admin/banners", adminToken, map[string]any{
		"title": "비공개", "location": "home", "is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/banners/active?location=home", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	active := decode[[]models.Banner](t, resp)
	require.Len(t, active, 1)
	assert.Equal(t, "올스타전", active[0].Title)
}
