package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCampaignIsPast(t *testing.T) {
	deadline := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	campaign := &Campaign{Deadline: deadline}

	require.False(t, campaign.IsPast(deadline.Add(-1*time.Second)))
	require.True(t, campaign.IsPast(deadline), "the deadline instant itself counts as past")
	require.True(t, campaign.IsPast(deadline.Add(1*time.Second)))
}

func TestCountdownComponents(t *testing.T) {
	deadline := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	campaign := &Campaign{Deadline: deadline}

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.False(t, campaign.IsPast(now))
	require.Equal(t, 0, campaign.DaysTillDeadline(now))
	require.Equal(t, 12, campaign.HoursTillDeadline(now))
	require.Equal(t, 720, campaign.MinutesTillDeadline(now))

	// 2 days, 3 hours, 30 minutes out: hours and minutes are components
	// within the final day, not totals.
	now = deadline.Add(-(2*24*time.Hour + 3*time.Hour + 30*time.Minute))
	require.Equal(t, 2, campaign.DaysTillDeadline(now))
	require.Equal(t, 3, campaign.HoursTillDeadline(now))
	require.Equal(t, 210, campaign.MinutesTillDeadline(now))

	// Sub-unit remainders truncate, never round up.
	now = deadline.Add(-(59 * time.Minute))
	require.Equal(t, 0, campaign.DaysTillDeadline(now))
	require.Equal(t, 0, campaign.HoursTillDeadline(now))
	require.Equal(t, 59, campaign.MinutesTillDeadline(now))
}

func TestCountdownClampsAtZeroOncePast(t *testing.T) {
	deadline := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	campaign := &Campaign{Deadline: deadline}

	now := deadline.Add(36 * time.Hour)
	require.Equal(t, 0, campaign.DaysTillDeadline(now))
	require.Equal(t, 0, campaign.HoursTillDeadline(now))
	require.Equal(t, 0, campaign.MinutesTillDeadline(now))
}

func TestTomorrowIsPerCall(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	require.Equal(t, now.Add(24*time.Hour), Tomorrow(now))

	later := now.Add(2 * time.Hour)
	require.Equal(t, later.Add(24*time.Hour), Tomorrow(later), "default deadline follows the creation time")
}

func TestGameTypeValid(t *testing.T) {
	require.True(t, GameTypeRaffle.Valid())
	require.True(t, GameTypeWinnerTakeAll.Valid())
	require.False(t, GameType("lottery").Valid())
	require.False(t, GameType("").Valid())
}

func TestSocialNetworkNames(t *testing.T) {
	require.Equal(t, "Facebook", NetworkFacebook.DisplayName())
	require.Equal(t, "Post to Twitter", NetworkTwitter.ActionTitle())
	require.False(t, SocialNetwork("myspace").Valid())
}
