package services

import (
	"testing"
	"time"

	"campaign-sharing-system/models"

	"github.com/stretchr/testify/require"
)

func TestPointsForUserZeroActions(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))

	total, err := svc.PointsForUser(campaign.ID, "user-with-nothing")
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestPointsForUserFrozenNonParticipant(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, db.Model(campaign).Update("points_frozen", true).Error)

	// No snapshot row for a user who never joined: that reads as 0, not an
	// error.
	total, err := svc.PointsForUser(campaign.ID, "never-joined")
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestPointsForUserCountsDistinctActionsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))
	a1 := createTestAction(t, db, campaign.ID, 5)
	a2 := createTestAction(t, db, campaign.ID, 3)

	completeAction(t, db, "user-1", a1.ID)
	completeAction(t, db, "user-1", a1.ID) // repeat completions don't double-count
	completeAction(t, db, "user-1", a2.ID)

	total, err := svc.PointsForUser(campaign.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, 8, total)
}

func TestPointsForUserIgnoresOtherCampaigns(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))
	other, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))

	mine := createTestAction(t, db, campaign.ID, 5)
	theirs := createTestAction(t, db, other.ID, 50)
	completeAction(t, db, "user-1", mine.ID)
	completeAction(t, db, "user-1", theirs.ID)

	total, err := svc.PointsForUser(campaign.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, 5, total)
}

func TestPointsForUserUnknownCampaign(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	_, err := svc.PointsForUser("no-such-campaign", "user-1")
	require.Error(t, err)
}

func TestLeaderboardOrderingAndZeroParticipants(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))
	a1 := createTestAction(t, db, campaign.ID, 5)
	a2 := createTestAction(t, db, campaign.ID, 3)

	completeAction(t, db, "leader", a1.ID)
	completeAction(t, db, "leader", a2.ID)
	completeAction(t, db, "runner-up", a2.ID)

	// joined but never completed anything
	_, err := svc.EnsureCampaignUser(campaign.ID, "lurker")
	require.NoError(t, err)

	entries, err := svc.Leaderboard(campaign.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, LeaderboardEntry{UserID: "leader", Points: 8}, entries[0])
	require.Equal(t, LeaderboardEntry{UserID: "runner-up", Points: 3}, entries[1])
	require.Equal(t, LeaderboardEntry{UserID: "lurker", Points: 0}, entries[2])
}

func TestEnsureCampaignUserSingleRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))

	first, err := svc.EnsureCampaignUser(campaign.ID, "user-1")
	require.NoError(t, err)

	// The second first-interaction must observe the winner's row, not error.
	second, err := svc.EnsureCampaignUser(campaign.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.CampaignUser{}).
		Where("campaign_id = ? AND user_id = ?", campaign.ID, "user-1").
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFreezeDuePointsSnapshotsTotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	campaign, _ := createTestCampaign(t, db, time.Now().UTC().Add(-time.Minute))
	action := createTestAction(t, db, campaign.ID, 7)

	_, err := svc.EnsureCampaignUser(campaign.ID, "user-1")
	require.NoError(t, err)
	completeAction(t, db, "user-1", action.ID)

	require.NoError(t, svc.FreezeDuePoints(time.Now().UTC()))

	var frozen models.Campaign
	require.NoError(t, db.First(&frozen, "id = ?", campaign.ID).Error)
	require.True(t, frozen.PointsFrozen)

	var cu models.CampaignUser
	require.NoError(t, db.Where("campaign_id = ? AND user_id = ?", campaign.ID, "user-1").
		First(&cu).Error)
	require.Equal(t, 7, cu.PointsAtDeadline)

	// Completions after the freeze no longer move the reported total.
	completeAction(t, db, "user-1", createTestAction(t, db, campaign.ID, 100).ID)
	total, err := svc.PointsForUser(campaign.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, 7, total)
}

func TestFreezeDuePointsSkipsRunningCampaigns(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	running, _ := createTestCampaign(t, db, time.Now().UTC().Add(24*time.Hour))

	require.NoError(t, svc.FreezeDuePoints(time.Now().UTC()))

	var campaign models.Campaign
	require.NoError(t, db.First(&campaign, "id = ?", running.ID).Error)
	require.False(t, campaign.PointsFrozen)
}
