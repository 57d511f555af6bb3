// workers/click_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"campaign-sharing-system/models"
	"campaign-sharing-system/services"

	"gorm.io/gorm"
)

// ClickSyncClient pulls click analytics from the URL-shortening service into
// the local share-link rows. The counts are display-only: accrual never
// reads them, so a shortener outage only delays analytics.
type ClickSyncClient struct {
	DB        *gorm.DB
	Shortener *services.ShortenerClient
}

func NewClickSyncClient(db *gorm.DB, shortener *services.ShortenerClient) *ClickSyncClient {
	return &ClickSyncClient{DB: db, Shortener: shortener}
}

// PollClicks refreshes click counts for every issued share link until ctx is
// cancelled.
func PollClicks(ctx context.Context, client *ClickSyncClient, pollInterval time.Duration) {
	log.Println("Starting share-link click polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Click polling stopped.")
			return
		case <-ticker.C:
			if err := client.syncOnce(ctx); err != nil {
				log.Printf("❌ Click sync pass failed: %v", err)
			}
		}
	}
}

func (c *ClickSyncClient) syncOnce(ctx context.Context) error {
	// Only links for campaigns that are still running; frozen campaigns
	// have nothing left to display live.
	var links []models.SharingCampaignUser
	err := c.DB.Model(&models.SharingCampaignUser{}).
		Select("sharing_campaign_users.*").
		Joins("JOIN sharing_campaigns ON sharing_campaigns.id = sharing_campaign_users.sharing_campaign_id").
		Joins("JOIN campaigns ON campaigns.id = sharing_campaigns.campaign_id").
		Where("campaigns.points_frozen = ?", false).
		Find(&links).Error
	if err != nil {
		return err
	}

	if len(links) == 0 {
		return nil
	}

	synced := 0
	for i := range links {
		link := &links[i]

		clicks, err := c.Shortener.Clicks(ctx, link.ShareURL)
		if err != nil {
			// Transient outage: skip this link, keep the last known count.
			log.Printf("⚠️ Click lookup failed for link %s: %v", link.ID, err)
			continue
		}

		if err := c.DB.Model(link).UpdateColumn("click_count", clicks).Error; err != nil {
			log.Printf("❌ Failed to store click count for link %s: %v", link.ID, err)
			continue
		}

		// Stamp the participation row so the campaign page can show when
		// analytics were last refreshed.
		var sharing models.SharingCampaign
		if err := c.DB.First(&sharing, "id = ?", link.SharingCampaignID).Error; err == nil {
			c.DB.Model(&models.CampaignUser{}).
				Where("campaign_id = ? AND user_id = ?", sharing.CampaignID, link.UserID).
				UpdateColumn("last_checked", time.Now().UTC())
		}

		synced++
	}

	log.Printf("📥 Click sync: refreshed %d of %d link(s)", synced, len(links))
	return nil
}
