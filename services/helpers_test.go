package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campaign-sharing-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Campaign{},
		&models.Prize{},
		&models.CampaignUser{},
		&models.Action{},
		&models.UserAction{},
		&models.SharingCampaign{},
		&models.SharingCampaignUser{},
		&models.SharingAction{},
		&models.SharingUserAction{},
	))

	return db
}

// fakeShortener is an httptest stand-in for the URL-shortening service. It
// hands out sequential short URLs and counts shorten calls.
type fakeShortener struct {
	srv *httptest.Server

	ShortenCalls int
	Clicks       int64
	FailShorten  bool
	BadPayload   bool
}

func newFakeShortener(t *testing.T) *fakeShortener {
	t.Helper()

	f := &fakeShortener{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/shorten", func(w http.ResponseWriter, r *http.Request) {
		if f.FailShorten {
			http.Error(w, "over quota", http.StatusServiceUnavailable)
			return
		}
		f.ShortenCalls++
		if f.BadPayload {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"url": fmt.Sprintf("http://sho.rt/%d", f.ShortenCalls)},
		})
	})
	mux.HandleFunc("/v3/link/clicks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"link_clicks": f.Clicks},
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeShortener) client() *ShortenerClient {
	return NewShortenerClient(ShortenerConfig{
		BaseURL: f.srv.URL,
		Login:   "test",
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func createTestCampaign(t *testing.T, db *gorm.DB, deadline time.Time) (*models.Campaign, *models.SharingCampaign) {
	t.Helper()

	campaign := &models.Campaign{
		ID:       uuid.NewString(),
		OwnerID:  "owner-1",
		Title:    "Save the Whales",
		Slug:     "save-the-whales",
		Deadline: deadline,
		GameType: models.GameTypeWinnerTakeAll,
	}
	require.NoError(t, db.Create(campaign).Error)

	sharing := &models.SharingCampaign{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		PostText:   "Check this out and spread the word!",
		LongURL:    "http://example.com/whales",
	}
	require.NoError(t, db.Create(sharing).Error)

	return campaign, sharing
}

func createTestAction(t *testing.T, db *gorm.DB, campaignID string, points int) *models.Action {
	t.Helper()

	now := time.Now().UTC()
	action := &models.Action{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Title:      fmt.Sprintf("Action worth %d", points),
		Points:     points,
		StartAt:    now.Add(-time.Hour),
		EndAt:      now.Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(action).Error)
	return action
}

func completeAction(t *testing.T, db *gorm.DB, userID, actionID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserAction{
		ID:       uuid.NewString(),
		UserID:   userID,
		ActionID: actionID,
	}).Error)
}
