package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncementRepository_SaveInsertsThenListsByPriority(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Announcement{Title: "low", Type: models.AnnouncementAll, Priority: 5}))
	require.NoError(t, repo.Save(ctx, &models.Announcement{Title: "high", Type: models.AnnouncementAll, Priority: 1}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "high", list[0].Title)
	assert.Equal(t, "low", list[1].Title)
}

func TestAnnouncementRepository_SaveUpdatesExisting(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	a := &models.Announcement{Title: "v1", Type: models.AnnouncementAll, Priority: 1}
	require.NoError(t, repo.Save(ctx, a))

	a.Title = "v2"
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)

	err = repo.Save(ctx, &models.Announcement{ID: 999, Title: "ghost", Type: models.AnnouncementAll, Priority: 1})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestAnnouncementRepository_SaveUpdateBumpsUpdatedAt(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	a := &models.Announcement{Title: "v1", Type: models.AnnouncementAll, Priority: 1}
	require.NoError(t, repo.Save(ctx, a))
	old := time.Now().Add(-24 * time.Hour).UTC()
	require.NoError(t, db.Model(&models.Announcement{}).Where("id = ?", a.ID).UpdateColumn("updated_at", old).Error)

	a.Title = "v2"
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(old.Add(time.Hour)), "updated_at %v should move past %v", got.UpdatedAt, old)
}

func TestAnnouncementRepository_ListActive(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	mr, _ := testutil.NewRedis(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-72 * time.Hour)
	future := now.Add(72 * time.Hour)

	require.NoError(t, repo.Save(ctx, &models.Announcement{Title: "open", Type: models.AnnouncementAll, Priority: 1}))
	require.NoError(t, repo.Save(ctx, &models.Announcement{Title: "expired", Type: models.AnnouncementAll, Priority: 1, EndDate: &past}))
	require.NoError(t, repo.Save(ctx, &models.Announcement{Title: "scheduled", Type: models.AnnouncementAll, Priority: 1, StartDate: &future}))
	require.NoError(t, repo.Save(ctx, &models.Announcement{Title: "window", Type: models.AnnouncementAll, Priority: 2, StartDate: &past, EndDate: &future}))

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	titles := make([]string, 0, len(active))
	for _, a := range active {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"open", "window"}, titles)
	assert.True(t, mr.Exists("announcements:active"))

	require.NoError(t, repo.Delete(ctx, active[0].ID))
	assert.False(t, mr.Exists("announcements:active"), "delete invalidates the cache")
}

func TestAnnouncementRepository_DeleteMock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnnouncementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "announcements" WHERE "announcements"."id" = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 3)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
