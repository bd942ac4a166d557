package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })

	t.Run("plain address", func(t *testing.T) {
		mr := miniredis.RunT(t)
		InitRedis(mr.Addr())
		require.NotNil(t, GetClient())
	})

	t.Run("url form", func(t *testing.T) {
		mr := miniredis.RunT(t)
		InitRedis("redis://" + mr.Addr() + "/0")
		require.NotNil(t, GetClient())
	})

	t.Run("unreachable disables cache", func(t *testing.T) {
		InitRedis("127.0.0.1:1")
		assert.Nil(t, GetClient())
	})

	t.Run("bad url disables cache", func(t *testing.T) {
		InitRedis("redis://%zz")
		assert.Nil(t, GetClient())
	})
}
