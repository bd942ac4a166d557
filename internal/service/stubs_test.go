package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kbomate/internal/external"
	"kbomate/internal/models"
	"kbomate/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stubs return zero values for any function field left nil.

type userRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	createFn          func(context.Context, *models.User) error
	updateProfileFn   func(context.Context, uint, string, *uint) error
	updateRoleFn      func(context.Context, uint, models.Role) error
	touchLastSignInFn func(context.Context, uint, time.Time) error
	upsertOAuthFn     func(context.Context, *models.User) (*models.User, error)
	listMembersFn     func(context.Context, int, int) ([]models.User, int64, error)
	listStaffFn       func(context.Context) ([]models.User, error)
	countFn           func(context.Context) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetRole(ctx context.Context, id uint) (models.Role, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		user.ID = 1
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, nickname string, teamID *uint) error {
	if s.updateProfileFn == nil {
		return nil
	}
	return s.updateProfileFn(ctx, id, nickname, teamID)
}
func (s *userRepoStub) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	if s.updateRoleFn == nil {
		return nil
	}
	return s.updateRoleFn(ctx, id, role)
}
func (s *userRepoStub) TouchLastSignIn(ctx context.Context, id uint, at time.Time) error {
	if s.touchLastSignInFn == nil {
		return nil
	}
	return s.touchLastSignInFn(ctx, id, at)
}
func (s *userRepoStub) UpsertOAuth(ctx context.Context, user *models.User) (*models.User, error) {
	if s.upsertOAuthFn == nil {
		user.ID = 1
		return user, nil
	}
	return s.upsertOAuthFn(ctx, user)
}
func (s *userRepoStub) ListMembers(ctx context.Context, page, size int) ([]models.User, int64, error) {
	if s.listMembersFn == nil {
		return nil, 0, nil
	}
	return s.listMembersFn(ctx, page, size)
}
func (s *userRepoStub) ListStaff(ctx context.Context) ([]models.User, error) {
	if s.listStaffFn == nil {
		return nil, nil
	}
	return s.listStaffFn(ctx)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx)
}

type teamRepoStub struct {
	exists map[uint]bool
}

func (s *teamRepoStub) List(context.Context) ([]models.Team, error) { return nil, nil }
func (s *teamRepoStub) GetByID(_ context.Context, id uint) (*models.Team, error) {
	if !s.exists[id] {
		return nil, models.NewNotFoundError("Team", id)
	}
	return &models.Team{ID: id}, nil
}
func (s *teamRepoStub) Exists(_ context.Context, id uint) (bool, error) { return s.exists[id], nil }
func (s *teamRepoStub) UpsertBySlug(context.Context, *models.Team) error { return nil }

type matePostRepoStub struct {
	listFn        func(context.Context, *uint, int, int) ([]models.MatePost, int64, error)
	getByIDFn     func(context.Context, uint) (*models.MatePost, error)
	existsFn      func(context.Context, uint) (bool, error)
	createFn      func(context.Context, *models.MatePost) error
	updateOwnedFn func(context.Context, uint, uint, map[string]any) (int64, error)
	deleteOwnedFn func(context.Context, uint, uint) (int64, error)
}

func (s *matePostRepoStub) List(ctx context.Context, teamID *uint, page, size int) ([]models.MatePost, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, teamID, page, size)
}
func (s *matePostRepoStub) ListByUser(context.Context, uint, int) ([]models.MatePost, error) {
	return nil, nil
}
func (s *matePostRepoStub) GetByID(ctx context.Context, id uint) (*models.MatePost, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("MatePost", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *matePostRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, id)
}
func (s *matePostRepoStub) Create(ctx context.Context, post *models.MatePost) error {
	if s.createFn == nil {
		post.ID = 1
		return nil
	}
	return s.createFn(ctx, post)
}
func (s *matePostRepoStub) UpdateOwned(ctx context.Context, id, userID uint, fields map[string]any) (int64, error) {
	if s.updateOwnedFn == nil {
		return 0, nil
	}
	return s.updateOwnedFn(ctx, id, userID, fields)
}
func (s *matePostRepoStub) DeleteOwned(ctx context.Context, id, userID uint) (int64, error) {
	if s.deleteOwnedFn == nil {
		return 0, nil
	}
	return s.deleteOwnedFn(ctx, id, userID)
}
func (s *matePostRepoStub) Count(context.Context) (int64, error) { return 0, nil }

type mateCommentRepoStub struct {
	listByPostFn   func(context.Context, uint) ([]models.MateComment, error)
	getByIDFn      func(context.Context, uint) (*models.MateComment, error)
	createFn       func(context.Context, *models.MateComment) error
	updateOwnedFn  func(context.Context, uint, uint, string) (int64, error)
	deleteOwnedFn  func(context.Context, uint, uint) (int64, error)
	deleteByPostFn func(context.Context, uint) error
}

func (s *mateCommentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.MateComment, error) {
	if s.listByPostFn == nil {
		return nil, nil
	}
	return s.listByPostFn(ctx, postID)
}
func (s *mateCommentRepoStub) GetByID(ctx context.Context, id uint) (*models.MateComment, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("MateComment", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *mateCommentRepoStub) Create(ctx context.Context, c *models.MateComment) error {
	if s.createFn == nil {
		c.ID = 1
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *mateCommentRepoStub) UpdateOwned(ctx context.Context, id, userID uint, content string) (int64, error) {
	if s.updateOwnedFn == nil {
		return 0, nil
	}
	return s.updateOwnedFn(ctx, id, userID, content)
}
func (s *mateCommentRepoStub) DeleteOwned(ctx context.Context, id, userID uint) (int64, error) {
	if s.deleteOwnedFn == nil {
		return 0, nil
	}
	return s.deleteOwnedFn(ctx, id, userID)
}
func (s *mateCommentRepoStub) DeleteByPost(ctx context.Context, postID uint) error {
	if s.deleteByPostFn == nil {
		return nil
	}
	return s.deleteByPostFn(ctx, postID)
}

type banRepoStub struct {
	created []*models.UserBan
	active  []models.UserBan
}

func (s *banRepoStub) Create(_ context.Context, ban *models.UserBan) error {
	ban.ID = uint(len(s.created) + 1)
	s.created = append(s.created, ban)
	return nil
}
func (s *banRepoStub) Delete(context.Context, uint) error { return nil }
func (s *banRepoStub) ActiveForUser(context.Context, uint, time.Time) ([]models.UserBan, error) {
	return s.active, nil
}
func (s *banRepoStub) CountActive(context.Context, time.Time) (int64, error) {
	return int64(len(s.active)), nil
}

type reportRepoStub struct {
	created []*models.Report
	stamps  []time.Time
	since   time.Time
	filter  repository.ReportFilter
}

func (s *reportRepoStub) Create(_ context.Context, r *models.Report) error {
	r.ID = uint(len(s.created) + 1)
	s.created = append(s.created, r)
	return nil
}
func (s *reportRepoStub) List(_ context.Context, f repository.ReportFilter) ([]models.Report, int64, error) {
	s.filter = f
	return nil, 0, nil
}
func (s *reportRepoStub) ListByReporter(context.Context, uint, int) ([]models.Report, error) {
	return nil, nil
}
func (s *reportRepoStub) UpdateStatus(context.Context, uint, models.ReportStatus) error { return nil }
func (s *reportRepoStub) Delete(context.Context, uint) error { return nil }
func (s *reportRepoStub) CountByStatus(context.Context, models.ReportStatus) (int64, error) {
	return 0, nil
}
func (s *reportRepoStub) CreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	s.since = since
	return s.stamps, nil
}

type pageRoleRepoStub struct {
	pairs   []models.AdminPageRole
	added   []models.AdminPageRole
	removed []models.AdminPageRole
	calls   int
}

func (s *pageRoleRepoStub) List(context.Context) ([]models.AdminPageRole, error) { return s.pairs, nil }
func (s *pageRoleRepoStub) HasAccess(_ context.Context, page string, role models.Role) (bool, error) {
	for _, p := range s.pairs {
		if p.PageKey == page && p.Role == role {
			return true, nil
		}
	}
	return false, nil
}
func (s *pageRoleRepoStub) ApplyDiff(_ context.Context, added, removed []models.AdminPageRole) error {
	s.calls++
	s.added, s.removed = added, removed
	return nil
}

type announcementRepoStub struct {
	items []models.Announcement
}

func (s *announcementRepoStub) List(context.Context) ([]models.Announcement, error) {
	return s.items, nil
}
func (s *announcementRepoStub) ListActive(context.Context, time.Time) ([]models.Announcement, error) {
	return s.items, nil
}
func (s *announcementRepoStub) GetByID(_ context.Context, id uint) (*models.Announcement, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, models.NewNotFoundError("Announcement", id)
}
func (s *announcementRepoStub) Save(_ context.Context, a *models.Announcement) error {
	if a.ID == 0 {
		a.ID = uint(len(s.items) + 1)
	}
	s.items = append(s.items, *a)
	return nil
}
func (s *announcementRepoStub) Delete(_ context.Context, id uint) error {
	out := s.items[:0]
	for _, a := range s.items {
		if a.ID != id {
			out = append(out, a)
		}
	}
	s.items = out
	return nil
}

type summaryRepoStub struct {
	saved []*models.Summary
}

func (s *summaryRepoStub) Create(_ context.Context, sum *models.Summary) error {
	sum.ID = uint(len(s.saved) + 1)
	s.saved = append(s.saved, sum)
	return nil
}
func (s *summaryRepoStub) LatestForMate(context.Context, uint) (*models.Summary, error) {
	if len(s.saved) == 0 {
		return nil, nil
	}
	return s.saved[len(s.saved)-1], nil
}

type sentEvent struct {
	userID    uint
	eventType string
	payload   any
}

type eventsStub struct {
	user []sentEvent
	all  []sentEvent
	err  error
}

func (s *eventsStub) NotifyUser(_ context.Context, userID uint, eventType string, payload any) error {
	s.user = append(s.user, sentEvent{userID: userID, eventType: eventType, payload: payload})
	return s.err
}
func (s *eventsStub) NotifyAll(_ context.Context, eventType string, payload any) error {
	s.all = append(s.all, sentEvent{eventType: eventType, payload: payload})
	return s.err
}

type weatherStub struct {
	current  *external.CurrentWeather
	forecast []external.ForecastEntry
	err      error
	cities   []string
}

func (s *weatherStub) Current(_ context.Context, city string) (*external.CurrentWeather, error) {
	s.cities = append(s.cities, city)
	return s.current, s.err
}
func (s *weatherStub) Forecast(_ context.Context, city string) ([]external.ForecastEntry, error) {
	s.cities = append(s.cities, city)
	return s.forecast, s.err
}

type transcriptStub struct {
	segments []external.TranscriptSegment
	err      error
}

func (s *transcriptStub) Fetch(context.Context, string) ([]external.TranscriptSegment, error) {
	return s.segments, s.err
}

type llmStub struct {
	prompts []string
	reply   string
	err     error
}

func (s *llmStub) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

var errBoom = errors.New("boom")

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
}
