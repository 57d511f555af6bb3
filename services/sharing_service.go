// services/sharing_service.go
package services

import (
	"errors"
	"log"
	"time"

	"campaign-sharing-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// clickTrackerAPICall keys the lazily created zero-point action that click
// events attach to.
const clickTrackerAPICall = "sharing.clicks"

type SharingService struct {
	DB     *gorm.DB
	Points *PointsService
	Links  *ShareLinkService
	Poster *SocialPosterClient
}

func NewSharingService(db *gorm.DB, points *PointsService, links *ShareLinkService, poster *SocialPosterClient) *SharingService {
	return &SharingService{DB: db, Points: points, Links: links, Poster: poster}
}

// SharePost publishes the campaign's share message to the user's connected
// networks and records a completion for each network that confirmed the
// post. Networks that fail are reported back, not silently dropped.
func (s *SharingService) SharePost(c *fiber.Ctx) error {
	campaignID := c.Params("id")
	userID := c.Locals("user_id").(string)

	accessToken := c.Get("X-Social-Token")

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if campaign.IsPast(time.Now().UTC()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Campaign deadline has passed"})
	}

	var sharing models.SharingCampaign
	if err := s.DB.Where("campaign_id = ?", campaign.ID).First(&sharing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sharing config missing for campaign"})
	}

	var req struct {
		Body string `json:"body"`
	}
	// Body is optional; an empty request falls back to the campaign message.
	_ = c.BodyParser(&req)
	body := req.Body
	if body == "" {
		body = sharing.PostText
	}

	if _, err := s.Points.EnsureCampaignUser(campaign.ID, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join campaign"})
	}

	link, err := s.Links.IssueShareLink(c.Context(), &sharing, userID)
	if err != nil {
		log.Printf("Share link issuance failed for user %s on campaign %s: %v", userID, campaignID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to issue share link"})
	}

	result, err := s.Poster.Post(c.Context(), accessToken, models.AllNetworks, body, link.ShareURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoProfile):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No connected social profile for user"})
		default:
			log.Printf("Social post failed for user %s on campaign %s: %v", userID, campaignID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Social posting service unavailable"})
		}
	}

	posted := []string{}
	failed := []fiber.Map{}
	for _, network := range models.AllNetworks {
		if _, ok := result.Posted(network); ok {
			if err := s.recordPost(campaign.ID, network, userID); err != nil {
				log.Printf("DB Error recording %s post for user %s: %v", network, userID, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record post"})
			}
			posted = append(posted, string(network))
		} else {
			failed = append(failed, fiber.Map{
				"network": string(network),
				"reason":  result.FailureReason(network),
			})
		}
	}

	points, err := s.Points.PointsForUser(campaign.ID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute points"})
	}

	status := fiber.StatusOK
	if len(posted) == 0 {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"posted": posted,
		"failed": failed,
		"points": points,
	})
}

// recordPost get-or-creates the network-scoped action for the campaign and
// appends the completion plus the sharing event log entry.
func (s *SharingService) recordPost(campaignID string, network models.SocialNetwork, userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		apiCall := "sharing.post." + string(network)
		action := models.Action{
			ID:          uuid.NewString(),
			CampaignID:  campaignID,
			Network:     &network,
			Title:       network.ActionTitle(),
			Points:      1,
			StartAt:     now,
			EndAt:       now.Add(365 * 24 * time.Hour),
			APICall:     &apiCall,
			LastChecked: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "api_call"}},
			DoNothing: true,
		}).Create(&action)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Re-read into a fresh row: GORM folds a populated primary key
			// into the query conditions, and the generated ID above was
			// never inserted.
			var existing models.Action
			if err := tx.Where("campaign_id = ? AND api_call = ?", campaignID, apiCall).
				First(&existing).Error; err != nil {
				return err
			}
			action = existing
		}

		sharingAction := models.SharingAction{
			ID:       uuid.NewString(),
			ActionID: action.ID,
			Network:  &network,
			Kind:     models.SharingEventPost,
		}
		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "action_id"}, {Name: "kind"}},
			DoNothing: true,
		}).Create(&sharingAction)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.SharingAction
			if err := tx.Where("action_id = ? AND kind = ?", action.ID, models.SharingEventPost).
				First(&existing).Error; err != nil {
				return err
			}
			sharingAction = existing
		}

		completion := models.UserAction{
			ID:       uuid.NewString(),
			UserID:   userID,
			ActionID: action.ID,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		event := models.SharingUserAction{
			ID:              uuid.NewString(),
			UserID:          userID,
			SharingActionID: sharingAction.ID,
		}
		return tx.Create(&event).Error
	})
}

// TrackClick resolves a public share token, logs the click against the link
// owner and redirects to the campaign destination. Clicks never award
// points; they only feed the sharing event log.
func (s *SharingService) TrackClick(c *fiber.Ctx) error {
	token := c.Params("token")

	link, err := s.Links.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown share link"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var sharing models.SharingCampaign
	if err := s.DB.First(&sharing, "id = ?", link.SharingCampaignID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	clickAction, err := s.ensureClickTracker(sharing.CampaignID)
	if err != nil {
		log.Printf("DB Error preparing click tracker for campaign %s: %v", sharing.CampaignID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record click"})
	}

	event := models.SharingUserAction{
		ID:              uuid.NewString(),
		UserID:          link.UserID, // attributed to the sharer, not the visitor
		SharingActionID: clickAction.ID,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("DB Error recording click for token %s: %v", token, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record click"})
	}

	return c.Redirect(sharing.LongURL, fiber.StatusFound)
}

// ensureClickTracker get-or-creates the campaign's zero-point click action
// and its sharing-side record. Concurrent first clicks resolve through the
// unique key on (campaign_id, api_call), same as the post actions.
func (s *SharingService) ensureClickTracker(campaignID string) (*models.SharingAction, error) {
	var sharingAction models.SharingAction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		apiCall := clickTrackerAPICall
		action := models.Action{
			ID:          uuid.NewString(),
			CampaignID:  campaignID,
			Title:       "Share link clicks",
			Points:      0,
			StartAt:     now,
			EndAt:       now.Add(365 * 24 * time.Hour),
			APICall:     &apiCall,
			LastChecked: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "api_call"}},
			DoNothing: true,
		}).Create(&action)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.Action
			if err := tx.Where("campaign_id = ? AND api_call = ?", campaignID, clickTrackerAPICall).
				First(&existing).Error; err != nil {
				return err
			}
			action = existing
		}

		sa := models.SharingAction{
			ID:       uuid.NewString(),
			ActionID: action.ID,
			Kind:     models.SharingEventClick,
		}
		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "action_id"}, {Name: "kind"}},
			DoNothing: true,
		}).Create(&sa)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.SharingAction
			if err := tx.Where("action_id = ? AND kind = ?", action.ID, models.SharingEventClick).
				First(&existing).Error; err != nil {
				return err
			}
			sa = existing
		}
		sharingAction = sa
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sharingAction, nil
}

// GetShareInfo returns the acting user's share link and sharing stats for a
// campaign.
func (s *SharingService) GetShareInfo(c *fiber.Ctx) error {
	campaignID := c.Params("id")
	userID := c.Locals("user_id").(string)

	var sharing models.SharingCampaign
	if err := s.DB.Where("campaign_id = ?", campaignID).First(&sharing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var link models.SharingCampaignUser
	err := s.DB.Where("sharing_campaign_id = ? AND user_id = ?", sharing.ID, userID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No share link issued yet"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var postEvents int64
	err = s.DB.Model(&models.SharingUserAction{}).
		Joins("JOIN sharing_actions ON sharing_actions.id = sharing_user_actions.sharing_action_id").
		Joins("JOIN actions ON actions.id = sharing_actions.action_id").
		Where("sharing_user_actions.user_id = ? AND sharing_actions.kind = ? AND actions.campaign_id = ?",
			userID, models.SharingEventPost, campaignID).
		Count(&postEvents).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(fiber.Map{
		"share_url":   link.ShareURL,
		"post_text":   sharing.PostText,
		"click_count": link.ClickCount,
		"post_count":  postEvents,
	})
}
