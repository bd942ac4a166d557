package repository

import (
	"context"
	"regexp"
	"testing"

	"kbomate/internal/models"
	"kbomate/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatePostRepository_CreateMock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatePostRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "mate_posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	post := &models.MatePost{UserID: 1, TeamID: 1, Title: "잠실 직관", Content: "같이 가요", MaxParticipants: 4, CurrentParticipants: 1}
	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatePostRepository_ListPaginatesAndFilters(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewMatePostRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner@kbo.kr", "password123!", models.RoleUser)
	lg := testutil.CreateTeam(t, db, "LG 트윈스", "lg-twins")
	kt := testutil.CreateTeam(t, db, "KT 위즈", "kt-wiz")

	for i := 0; i < 12; i++ {
		testutil.CreateMatePost(t, db, owner.ID, lg.ID, "lg")
	}
	testutil.CreateMatePost(t, db, owner.ID, kt.ID, "kt")
	hidden := testutil.CreateMatePost(t, db, owner.ID, kt.ID, "deleted")
	require.NoError(t, db.Model(hidden).Update("is_deleted", true).Error)

	page1, total, err := repo.List(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.Len(t, page1, 10)
	require.NotNil(t, page1[0].User)
	require.NotNil(t, page1[0].Team)

	page2, _, err := repo.List(ctx, nil, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	ktOnly, total, err := repo.List(ctx, &kt.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, ktOnly, 1)
	assert.Equal(t, "kt", ktOnly[0].Title)

	_, err = repo.GetByID(ctx, hidden.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestMatePostRepository_OwnerFilteredWrites(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewMatePostRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner@kbo.kr", "password123!", models.RoleUser)
	other := testutil.CreateUser(t, db, "other@kbo.kr", "password123!", models.RoleUser)
	team := testutil.CreateTeam(t, db, "SSG 랜더스", "ssg-landers")
	post := testutil.CreateMatePost(t, db, owner.ID, team.ID, "문학 직관")

	n, err := repo.UpdateOwned(ctx, post.ID, other.ID, map[string]any{"title": "hijack"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpdateOwned(ctx, post.ID, owner.ID, map[string]any{"title": "문학 직관 2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteOwned(ctx, post.ID, other.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	exists, err := repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	n, err = repo.DeleteOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	exists, err = repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMateCommentRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewMateCommentRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner@kbo.kr", "password123!", models.RoleUser)
	other := testutil.CreateUser(t, db, "other@kbo.kr", "password123!", models.RoleUser)
	team := testutil.CreateTeam(t, db, "한화 이글스", "hanwha-eagles")
	post := testutil.CreateMatePost(t, db, owner.ID, team.ID, "대전 직관")

	first := &models.MateComment{PostID: post.ID, UserID: other.ID, Content: "저요"}
	second := &models.MateComment{PostID: post.ID, UserID: owner.ID, Content: "좋아요"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "oldest first")
	require.NotNil(t, list[0].User)

	n, err := repo.UpdateOwned(ctx, first.ID, owner.ID, "수정")
	require.NoError(t, err)
	assert.Zero(t, n, "non-owner edit touches no rows")

	n, err = repo.UpdateOwned(ctx, first.ID, other.ID, "수정")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteOwned(ctx, second.ID, other.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.DeleteByPost(ctx, post.ID))
	list, err = repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
