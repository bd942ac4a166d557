package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStadiums_Catalog(t *testing.T) {
	stadiums, err := Stadiums()
	require.NoError(t, err)
	assert.Len(t, stadiums, 9)
	for _, s := range stadiums {
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.City)
	}
}

func TestFindStadium(t *testing.T) {
	stadiums, err := Stadiums()
	require.NoError(t, err)

	s, ok := FindStadium(stadiums, "seoul")
	require.True(t, ok)
	assert.Equal(t, "잠실 야구장", s.Name)

	s, ok = FindStadium(stadiums, "Busan")
	require.True(t, ok)
	assert.Equal(t, "사직야구장", s.Name)

	_, ok = FindStadium(stadiums, "Tokyo")
	assert.False(t, ok)
}
