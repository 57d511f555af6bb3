// services/campaign_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"campaign-sharing-system/models"
	"campaign-sharing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CampaignService struct {
	DB     *gorm.DB
	Points *PointsService
	Links  *ShareLinkService

	// PublicBaseURL is the externally visible base of this service, used as
	// the default share destination when an organizer gives none.
	PublicBaseURL string
}

func NewCampaignService(db *gorm.DB, points *PointsService, links *ShareLinkService, publicBaseURL string) *CampaignService {
	return &CampaignService{
		DB:            db,
		Points:        points,
		Links:         links,
		PublicBaseURL: publicBaseURL,
	}
}

// CreateCampaign creates a campaign plus its paired SharingCampaign row.
func (s *CampaignService) CreateCampaign(c *fiber.Ctx) error {
	ownerID := c.Locals("user_id").(string)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}

	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Deadline    *time.Time      `json:"deadline"`
		GameType    models.GameType `json:"game_type"`
		VideoURL    string          `json:"video_url"`
		PostText    string          `json:"post_text"`
		LongURL     string          `json:"long_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}

	now := time.Now().UTC()
	deadline := models.Tomorrow(now)
	if req.Deadline != nil {
		deadline = req.Deadline.UTC()
	}
	if !deadline.After(now) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Deadline must be in the future"})
	}

	gameType := req.GameType
	if gameType == "" {
		gameType = models.GameTypeWinnerTakeAll
	}
	if !gameType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid game type"})
	}

	campaign := &models.Campaign{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Deadline:    deadline,
		GameType:    gameType,
		VideoURL:    req.VideoURL,
	}

	longURL := req.LongURL
	if longURL == "" {
		longURL = fmt.Sprintf("%s/campaigns/%s", s.PublicBaseURL, campaign.ID)
	}
	postText := req.PostText
	if postText == "" {
		postText = "Check this out and spread the word!"
	}

	sharing := &models.SharingCampaign{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		PostText:   postText,
		LongURL:    longURL,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}
		return tx.Create(sharing).Error
	})
	if err != nil {
		log.Printf("DB Error creating campaign: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create campaign"})
	}

	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// UpdateCampaign updates organizer-editable fields.
func (s *CampaignService) UpdateCampaign(c *fiber.Ctx) error {
	id := c.Params("id")
	ownerID := c.Locals("user_id").(string)

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if campaign.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not the campaign owner"})
	}

	var req struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Deadline    *time.Time       `json:"deadline"`
		GameType    *models.GameType `json:"game_type"`
		VideoURL    *string          `json:"video_url"`
		PostText    *string          `json:"post_text"`
		LongURL     *string          `json:"long_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title != nil {
		if *req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title cannot be empty"})
		}
		campaign.Title = *req.Title
		campaign.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.Deadline != nil {
		if !req.Deadline.UTC().After(time.Now().UTC()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Deadline must be in the future"})
		}
		campaign.Deadline = req.Deadline.UTC()
	}
	if req.GameType != nil {
		if !req.GameType.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid game type"})
		}
		campaign.GameType = *req.GameType
	}
	if req.VideoURL != nil {
		campaign.VideoURL = *req.VideoURL
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&campaign).Error; err != nil {
			return err
		}
		if req.PostText != nil || req.LongURL != nil {
			updates := map[string]interface{}{}
			if req.PostText != nil {
				updates["post_text"] = *req.PostText
			}
			if req.LongURL != nil {
				updates["long_url"] = *req.LongURL
			}
			return tx.Model(&models.SharingCampaign{}).
				Where("campaign_id = ?", campaign.ID).
				Updates(updates).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("DB Error updating campaign %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update campaign"})
	}

	return c.JSON(campaign)
}

// GetCampaignByID returns one campaign with its prizes and actions.
func (s *CampaignService) GetCampaignByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var campaign models.Campaign
	err := s.DB.Preload("Prizes").Preload("Actions").First(&campaign, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(campaign)
}

// ListCampaigns returns current campaigns (deadline still ahead); ?all=true
// includes finished ones.
func (s *CampaignService) ListCampaigns(c *fiber.Ctx) error {
	query := s.DB.Model(&models.Campaign{}).Order("deadline ASC")
	if c.Query("all") != "true" {
		query = query.Where("deadline > ?", time.Now().UTC())
	}

	var campaigns []models.Campaign
	if err := query.Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(campaigns)
}

// ViewCampaign is the participant-facing campaign page payload: it joins the
// viewer to the campaign (get-or-create), issues their share link and returns
// campaign, countdown, points and the share URL in one response.
func (s *CampaignService) ViewCampaign(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("user_id").(string)

	var campaign models.Campaign
	if err := s.DB.Preload("Prizes").Preload("Actions").First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if _, err := s.Points.EnsureCampaignUser(campaign.ID, userID); err != nil {
		log.Printf("DB Error joining user %s to campaign %s: %v", userID, id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join campaign"})
	}

	var sharing models.SharingCampaign
	if err := s.DB.Where("campaign_id = ?", campaign.ID).First(&sharing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sharing config missing for campaign"})
	}

	link, err := s.Links.IssueShareLink(c.Context(), &sharing, userID)
	if err != nil {
		log.Printf("Share link issuance failed for user %s on campaign %s: %v", userID, id, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to issue share link"})
	}

	points, err := s.Points.PointsForUser(campaign.ID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute points"})
	}

	now := time.Now().UTC()
	return c.JSON(fiber.Map{
		"campaign":  campaign,
		"is_past":   campaign.IsPast(now),
		"countdown": fiber.Map{
			"days":    campaign.DaysTillDeadline(now),
			"hours":   campaign.HoursTillDeadline(now),
			"minutes": campaign.MinutesTillDeadline(now),
		},
		"points":    points,
		"share_url": link.ShareURL,
		"post_text": sharing.PostText,
	})
}

// GetLeaderboard returns per-user totals for a campaign, highest first.
func (s *CampaignService) GetLeaderboard(c *fiber.Ctx) error {
	id := c.Params("id")

	entries, err := s.Points.Leaderboard(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute leaderboard"})
	}

	return c.JSON(fiber.Map{"leaderboard": entries})
}

// CreatePrize adds a prize to the campaign's pool.
func (s *CampaignService) CreatePrize(c *fiber.Ctx) error {
	campaignID := c.Params("id")
	ownerID := c.Locals("user_id").(string)

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if campaign.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not the campaign owner"})
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		VideoURL    string   `json:"video_url"`
		DollarValue *float64 `json:"dollar_value"`
		PointsValue *int     `json:"points_value"`
		Quantity    *int     `json:"quantity"`
		Place       *int     `json:"place"`
		Chance      bool     `json:"chance"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}

	prize := &models.Prize{
		ID:          uuid.NewString(),
		CampaignID:  campaign.ID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		DollarValue: 10,
		PointsValue: 100,
		Quantity:    1,
		Place:       1,
		Chance:      req.Chance,
	}
	if req.DollarValue != nil {
		prize.DollarValue = *req.DollarValue
	}
	if req.PointsValue != nil {
		prize.PointsValue = *req.PointsValue
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity must be at least 1"})
		}
		prize.Quantity = *req.Quantity
	}
	if req.Place != nil {
		if *req.Place < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Place must be at least 1"})
		}
		prize.Place = *req.Place
	}

	if err := s.DB.Create(prize).Error; err != nil {
		log.Printf("DB Error creating prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create prize"})
	}

	return c.Status(fiber.StatusCreated).JSON(prize)
}

// ListPrizes lists a campaign's prize pool ordered by place.
func (s *CampaignService) ListPrizes(c *fiber.Ctx) error {
	campaignID := c.Params("id")

	var prizes []models.Prize
	err := s.DB.Where("campaign_id = ?", campaignID).Order("place ASC").Find(&prizes).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(prizes)
}

// CreateAction defines a point-bearing task on a campaign.
func (s *CampaignService) CreateAction(c *fiber.Ctx) error {
	campaignID := c.Params("id")
	ownerID := c.Locals("user_id").(string)

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if campaign.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not the campaign owner"})
	}

	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		VideoURL    string     `json:"video_url"`
		Points      *int       `json:"points"`
		StartAt     *time.Time `json:"start_at"`
		EndAt       *time.Time `json:"end_at"`
		APICall     string     `json:"api_call"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}

	// APICall stays NULL unless given: the unique key on (campaign_id,
	// api_call) only applies to keyed actions.
	var apiCall *string
	if req.APICall != "" {
		apiCall = &req.APICall
	}

	now := time.Now().UTC()
	action := &models.Action{
		ID:          uuid.NewString(),
		CampaignID:  campaign.ID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Points:      1,
		StartAt:     now,
		EndAt:       campaign.Deadline,
		APICall:     apiCall,
		LastChecked: now,
	}
	if req.Points != nil {
		if *req.Points < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Points cannot be negative"})
		}
		action.Points = *req.Points
	}
	if req.StartAt != nil {
		action.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		action.EndAt = req.EndAt.UTC()
	}
	if action.EndAt.Before(action.StartAt) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End window cannot precede start window"})
	}

	if err := s.DB.Create(action).Error; err != nil {
		log.Printf("DB Error creating action: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create action"})
	}

	return c.Status(fiber.StatusCreated).JSON(action)
}

// CompleteAction appends a UserAction for the acting user. Append-only:
// repeating an action adds another completion row but the accrual engine
// counts each distinct action once.
func (s *CampaignService) CompleteAction(c *fiber.Ctx) error {
	actionID := c.Params("action_id")
	userID := c.Locals("user_id").(string)

	var action models.Action
	if err := s.DB.First(&action, "id = ?", actionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Action not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now().UTC()
	if now.Before(action.StartAt) || now.After(action.EndAt) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Action is outside its time window"})
	}

	if _, err := s.Points.EnsureCampaignUser(action.CampaignID, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join campaign"})
	}

	completion := &models.UserAction{
		ID:       uuid.NewString(),
		UserID:   userID,
		ActionID: action.ID,
	}
	if err := s.DB.Create(completion).Error; err != nil {
		log.Printf("DB Error recording completion: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record completion"})
	}

	return c.Status(fiber.StatusCreated).JSON(completion)
}

// UploadCampaignLogo stores a campaign logo in object storage and saves the
// returned URL on the campaign.
func (s *CampaignService) UploadCampaignLogo(c *fiber.Ctx) error {
	id := c.Params("id")
	ownerID := c.Locals("user_id").(string)

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if campaign.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not the campaign owner"})
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Logo file is required"})
	}

	url, err := utils.UploadLogo(fileHeader, utils.LogoKey(ownerID, fileHeader.Filename))
	if err != nil {
		log.Printf("Logo upload failed for campaign %s: %v", id, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to store logo"})
	}

	if err := s.DB.Model(&campaign).Update("logo_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save logo URL"})
	}

	return c.JSON(fiber.Map{"logo_url": url})
}

// UploadPrizeLogo stores a prize logo, keyed under the campaign owner.
func (s *CampaignService) UploadPrizeLogo(c *fiber.Ctx) error {
	id := c.Params("prize_id")
	ownerID := c.Locals("user_id").(string)

	var prize models.Prize
	if err := s.DB.First(&prize, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", prize.CampaignID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if campaign.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not the campaign owner"})
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Logo file is required"})
	}

	url, err := utils.UploadLogo(fileHeader, utils.LogoKey(ownerID, fileHeader.Filename))
	if err != nil {
		log.Printf("Logo upload failed for prize %s: %v", id, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to store logo"})
	}

	if err := s.DB.Model(&prize).Update("logo_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save logo URL"})
	}

	return c.JSON(fiber.Map{"logo_url": url})
}
