package repository

import (
	"context"
	"testing"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerRepository_SaveUpdateBumpsUpdatedAt(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewBannerRepository(db)
	ctx := context.Background()

	b := &models.Banner{Title: "v1", Location: models.BannerHome, Priority: 1}
	require.NoError(t, repo.Save(ctx, b))
	old := time.Now().Add(-24 * time.Hour).UTC()
	require.NoError(t, db.Model(&models.Banner{}).Where("id = ?", b.ID).UpdateColumn("updated_at", old).Error)

	b.Title = "v2"
	require.NoError(t, repo.Save(ctx, b))

	var got models.Banner
	require.NoError(t, db.First(&got, b.ID).Error)
	assert.Equal(t, "v2", got.Title)
	assert.True(t, got.UpdatedAt.After(old.Add(time.Hour)), "updated_at %v should move past %v", got.UpdatedAt, old)
}

func TestBannerRepository_UnsetIsActiveStoresEnabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewBannerRepository(db)
	ctx := context.Background()

	off := false
	require.NoError(t, repo.Save(ctx, &models.Banner{Title: "on", Location: models.BannerHome, Priority: 1}))
	require.NoError(t, repo.Save(ctx, &models.Banner{Title: "off", Location: models.BannerHome, Priority: 2, IsActive: &off}))

	active, err := repo.ListActive(ctx, models.BannerHome, time.Now())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "on", active[0].Title)
	assert.True(t, active[0].Enabled())
}
