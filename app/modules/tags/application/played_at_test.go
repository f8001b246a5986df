package tagservice

import (
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayedAt(t *testing.T) {
	now := time.Date(2026, 6, 10, 20, 0, 0, 0, time.UTC)

	got, err := ParsePlayedAt("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParsePlayedAt("2026-06-09T18:15:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 9, 18, 15, 0, 0, time.UTC), got)

	got, err = ParsePlayedAt("yesterday at 6:30 pm", now)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Day())
	assert.Equal(t, 18, got.Hour())
	assert.Equal(t, 30, got.Minute())

	_, err = ParsePlayedAt("next tuesday", now)
	assert.True(t, leaguedomain.IsValidation(err), "future")

	_, err = ParsePlayedAt("banana", now)
	assert.True(t, leaguedomain.IsValidation(err))
}
