package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campaign-sharing-system/models"
	"campaign-sharing-system/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Campaign{},
		&models.CampaignUser{},
		&models.SharingCampaign{},
		&models.SharingCampaignUser{},
	))
	return db
}

func seedShareLink(t *testing.T, db *gorm.DB, frozen bool) (*models.Campaign, *models.SharingCampaignUser) {
	t.Helper()

	campaign := &models.Campaign{
		ID:           uuid.NewString(),
		OwnerID:      "owner-1",
		Title:        "Clicks",
		Deadline:     time.Now().UTC().Add(24 * time.Hour),
		GameType:     models.GameTypeRaffle,
		PointsFrozen: frozen,
	}
	require.NoError(t, db.Create(campaign).Error)

	sharing := &models.SharingCampaign{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		LongURL:    "http://example.com",
	}
	require.NoError(t, db.Create(sharing).Error)

	link := &models.SharingCampaignUser{
		ID:                uuid.NewString(),
		SharingCampaignID: sharing.ID,
		UserID:            "sharer-1",
		Token:             uuid.NewString(),
		ShareURL:          "http://sho.rt/1",
	}
	require.NoError(t, db.Create(link).Error)

	require.NoError(t, db.Create(&models.CampaignUser{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		UserID:     "sharer-1",
	}).Error)

	return campaign, link
}

func clickServer(t *testing.T, clicks int64, fail bool) *services.ShortenerClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"link_clicks": clicks},
		})
	}))
	t.Cleanup(srv.Close)

	return services.NewShortenerClient(services.ShortenerConfig{
		BaseURL: srv.URL,
		Login:   "test",
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func TestSyncOnceRefreshesCounts(t *testing.T) {
	db := newWorkerTestDB(t)
	campaign, link := seedShareLink(t, db, false)

	client := NewClickSyncClient(db, clickServer(t, 42, false))
	require.NoError(t, client.syncOnce(context.Background()))

	var updated models.SharingCampaignUser
	require.NoError(t, db.First(&updated, "id = ?", link.ID).Error)
	require.EqualValues(t, 42, updated.ClickCount)

	var cu models.CampaignUser
	require.NoError(t, db.Where("campaign_id = ? AND user_id = ?", campaign.ID, "sharer-1").
		First(&cu).Error)
	require.WithinDuration(t, time.Now().UTC(), cu.LastChecked, time.Minute)
}

func TestSyncOnceKeepsLastCountOnOutage(t *testing.T) {
	db := newWorkerTestDB(t)
	_, link := seedShareLink(t, db, false)
	require.NoError(t, db.Model(link).UpdateColumn("click_count", 7).Error)

	client := NewClickSyncClient(db, clickServer(t, 0, true))
	require.NoError(t, client.syncOnce(context.Background()))

	var updated models.SharingCampaignUser
	require.NoError(t, db.First(&updated, "id = ?", link.ID).Error)
	require.EqualValues(t, 7, updated.ClickCount, "an outage must not regress the cached count")
}

func TestSyncOnceSkipsFrozenCampaigns(t *testing.T) {
	db := newWorkerTestDB(t)
	_, link := seedShareLink(t, db, true)

	client := NewClickSyncClient(db, clickServer(t, 99, false))
	require.NoError(t, client.syncOnce(context.Background()))

	var updated models.SharingCampaignUser
	require.NoError(t, db.First(&updated, "id = ?", link.ID).Error)
	require.EqualValues(t, 0, updated.ClickCount)
}
