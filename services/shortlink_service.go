// services/shortlink_service.go
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"campaign-sharing-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// trackingParam is the query parameter carrying the per-user token on the
// destination URL, so the shortener's analytics attribute each click to
// exactly one user.
const trackingParam = "ourmyun"

type ShareLinkService struct {
	DB        *gorm.DB
	Shortener *ShortenerClient
}

func NewShareLinkService(db *gorm.DB, shortener *ShortenerClient) *ShareLinkService {
	return &ShareLinkService{DB: db, Shortener: shortener}
}

// NewShareToken returns a random public token. Random rather than a counter:
// the token is exposed in a public URL and must not be guessable.
func NewShareToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// BuildTrackedURL appends the tracking token to longURL, with & if the URL
// already carries a query string and ? otherwise.
func BuildTrackedURL(longURL, token string) string {
	sep := "?"
	if strings.Contains(longURL, "?") {
		sep = "&"
	}
	return longURL + sep + trackingParam + "=" + token
}

// IssueShareLink returns the user's share link for the campaign, creating
// and shortening it on first call. Issuance is idempotent: an existing row
// is returned untouched, never re-shortened. On shortener failure nothing
// is persisted.
func (s *ShareLinkService) IssueShareLink(ctx context.Context, sharing *models.SharingCampaign, userID string) (*models.SharingCampaignUser, error) {
	var existing models.SharingCampaignUser
	err := s.DB.Where("sharing_campaign_id = ? AND user_id = ?", sharing.ID, userID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := NewShareToken()
	if err != nil {
		return nil, err
	}

	// The shortener call happens before (and outside) any DB write, so no
	// row lock is ever held across network I/O.
	shortURL, err := s.Shortener.Shorten(ctx, BuildTrackedURL(sharing.LongURL, token))
	if err != nil {
		return nil, err
	}

	link := models.SharingCampaignUser{
		ID:                uuid.NewString(),
		SharingCampaignID: sharing.ID,
		UserID:            userID,
		Token:             token,
		ShareURL:          shortURL,
	}

	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sharing_campaign_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&link)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Lost the first-interaction race: observe the winner's row.
		if err := s.DB.Where("sharing_campaign_id = ? AND user_id = ?", sharing.ID, userID).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	return &link, nil
}

// FindByToken resolves a public tracking token back to its share link.
func (s *ShareLinkService) FindByToken(token string) (*models.SharingCampaignUser, error) {
	var link models.SharingCampaignUser
	if err := s.DB.Where("token = ?", token).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
