package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type teamRow struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestAside_LoadsOnceThenServesFromCache(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]teamRow, error) {
		calls++
		return []teamRow{{ID: 1, Name: "LG 트윈스"}}, nil
	}

	first, err := Aside(ctx, TeamsKey(), TeamsTTL, load)
	require.NoError(t, err)
	second, err := Aside(ctx, TeamsKey(), TeamsTTL, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(TeamsKey()))
}

func TestAside_LoadErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("db down")

	_, err := Aside(context.Background(), TeamsKey(), TeamsTTL, func(context.Context) ([]teamRow, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(TeamsKey()))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Aside(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
			calls++
			return 7, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidate(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	SetJSON(ctx, UserRoleKey(4), "admin", UserRoleTTL)
	require.True(t, mr.Exists("user:4:role"))

	InvalidateUserRole(ctx, 4)
	assert.False(t, mr.Exists("user:4:role"))
}

func TestGetJSON_CorruptEntryIsDropped(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(ActiveAnnouncementsKey(), "{not json"))

	var out []teamRow
	assert.False(t, GetJSON(context.Background(), ActiveAnnouncementsKey(), &out))
	assert.False(t, mr.Exists(ActiveAnnouncementsKey()))
}

func TestActiveBannersKey(t *testing.T) {
	assert.Equal(t, "banners:active:all", ActiveBannersKey(""))
	assert.Equal(t, "banners:active:home", ActiveBannersKey("home"))
}
