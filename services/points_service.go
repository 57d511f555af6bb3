// services/points_service.go
package services

import (
	"errors"
	"time"

	"campaign-sharing-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointsService is the accrual engine: it turns a user's completed actions
// into a point total per campaign, and freezes totals at the deadline.
//
// Click events on share links never feed accrual directly. Only posting
// (a UserAction row) earns points; the click log is analytics. This keeps
// totals monotonic even when the shortener is unreachable.
type PointsService struct {
	DB *gorm.DB
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db}
}

// PointsForUser computes the user's total for a campaign. Each distinct
// completed action counts once, whatever the number of UserAction rows.
// A user with no completed actions totals exactly 0. Once the campaign is
// frozen the snapshot is returned instead of a live sum.
func (s *PointsService) PointsForUser(campaignID, userID string) (int, error) {
	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		return 0, err
	}

	if campaign.PointsFrozen {
		var cu models.CampaignUser
		err := s.DB.Where("campaign_id = ? AND user_id = ?", campaignID, userID).
			First(&cu).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return cu.PointsAtDeadline, nil
	}

	return s.liveTotal(s.DB, campaignID, userID)
}

func (s *PointsService) liveTotal(tx *gorm.DB, campaignID, userID string) (int, error) {
	completed := tx.Model(&models.UserAction{}).
		Select("action_id").
		Where("user_id = ?", userID)

	var total int
	err := tx.Model(&models.Action{}).
		Select("COALESCE(SUM(points), 0)").
		Where("campaign_id = ? AND id IN (?)", campaignID, completed).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// LeaderboardEntry is one row of a campaign leaderboard.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}

// Leaderboard returns per-user totals for a campaign, highest first.
// Participants who joined but completed nothing appear with 0 points.
func (s *PointsService) Leaderboard(campaignID string) ([]LeaderboardEntry, error) {
	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		return nil, err
	}

	if campaign.PointsFrozen {
		var entries []LeaderboardEntry
		err := s.DB.Model(&models.CampaignUser{}).
			Select("user_id, points_at_deadline AS points").
			Where("campaign_id = ?", campaignID).
			Order("points_at_deadline DESC").
			Scan(&entries).Error
		return entries, err
	}

	var entries []LeaderboardEntry
	err := s.DB.Raw(`
		SELECT ua.user_id, COALESCE(SUM(a.points), 0) AS points
		FROM (SELECT DISTINCT user_id, action_id FROM user_actions) ua
		JOIN actions a ON a.id = ua.action_id
		WHERE a.campaign_id = ? AND a.deleted_at IS NULL
		GROUP BY ua.user_id
		ORDER BY points DESC`, campaignID).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	// Participants without a single completed action still belong on the board.
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.UserID] = true
	}
	var participants []models.CampaignUser
	if err := s.DB.Where("campaign_id = ?", campaignID).Find(&participants).Error; err != nil {
		return nil, err
	}
	for _, p := range participants {
		if !seen[p.UserID] {
			entries = append(entries, LeaderboardEntry{UserID: p.UserID, Points: 0})
		}
	}

	return entries, nil
}

// EnsureCampaignUser get-or-creates the participation row for (campaign,
// user). Concurrent first interactions resolve to a single surviving row;
// the loser observes the winner's.
func (s *PointsService) EnsureCampaignUser(campaignID, userID string) (*models.CampaignUser, error) {
	cu := models.CampaignUser{
		ID:          uuid.NewString(),
		CampaignID:  campaignID,
		UserID:      userID,
		LastChecked: time.Now().UTC(),
	}

	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&cu)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var existing models.CampaignUser
		if err := s.DB.Where("campaign_id = ? AND user_id = ?", campaignID, userID).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	return &cu, nil
}

// FreezeDuePoints snapshots participant totals for every campaign whose
// deadline has passed and which has not been frozen yet. Each campaign is
// frozen in one transaction so a partial snapshot is never visible.
func (s *PointsService) FreezeDuePoints(now time.Time) error {
	var due []models.Campaign
	err := s.DB.Where("deadline <= ? AND points_frozen = ?", now, false).
		Find(&due).Error
	if err != nil {
		return err
	}

	for i := range due {
		campaign := due[i]
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var participants []models.CampaignUser
			if err := tx.Where("campaign_id = ?", campaign.ID).Find(&participants).Error; err != nil {
				return err
			}

			for j := range participants {
				total, err := s.liveTotal(tx, campaign.ID, participants[j].UserID)
				if err != nil {
					return err
				}
				if err := tx.Model(&participants[j]).
					Update("points_at_deadline", total).Error; err != nil {
					return err
				}
			}

			return tx.Model(&campaign).Update("points_frozen", true).Error
		})
		if err != nil {
			return err
		}
	}

	return nil
}
