package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsunagu-app/backend/internal/models"
)

func TestValidGender(t *testing.T) {
	for _, s := range []string{"male", "female", "other", "no_answer", "any"} {
		require.True(t, validGender(s), s)
	}
	require.False(t, validGender("男性"))
	require.False(t, validGender(""))
}

func TestValidITLevel(t *testing.T) {
	for _, s := range []string{"初心者", "基礎レベル", "中級レベル", "上級レベル", "不問"} {
		require.True(t, validITLevel(s), s)
	}
	require.False(t, validITLevel("expert"))
}

func TestParseAgeGroups(t *testing.T) {
	groups, ok := parseAgeGroups([]string{"60代", "80代以上"})
	require.True(t, ok)
	require.Equal(t, []models.AgeGroup{models.AgeGroup60s, models.AgeGroup80sPlus}, groups)

	groups, ok = parseAgeGroups(nil)
	require.True(t, ok)
	require.Empty(t, groups)

	_, ok = parseAgeGroups([]string{"60代", "40代"})
	require.False(t, ok)
}
