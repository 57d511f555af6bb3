package models

import "time"

// CampaignUser links a participant to a campaign. Created lazily on first
// interaction; at most one row per (campaign, user) pair.
type CampaignUser struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID string `gorm:"not null;uniqueIndex:uk_campaign_user" json:"campaign_id"`
	UserID     string `gorm:"not null;uniqueIndex:uk_campaign_user" json:"user_id"` // ExternalUserID

	// LastChecked is stamped by the click-sync worker each time the
	// shortener analytics for this user's share link were polled.
	LastChecked time.Time `json:"last_checked"`

	// PointsAtDeadline is the frozen total, written once by the freeze job
	// when the campaign deadline passes.
	PointsAtDeadline int `gorm:"default:0" json:"points_at_deadline"`

	Timestamps
}
