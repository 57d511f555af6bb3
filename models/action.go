package models

import "time"

// Action is a definable, point-bearing task scoped to a campaign, e.g.
// "post to twitter". APICall keys actions the sharing flow creates on the
// fly (per-network posts, the click tracker), at most one per campaign per
// key; manually defined actions leave it NULL so they never collide on the
// unique index. Network is nil for manual actions and the click tracker.
type Action struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID  string         `gorm:"not null;uniqueIndex:uk_campaign_api_call" json:"campaign_id"`
	Network     *SocialNetwork `gorm:"index" json:"network,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	LogoURL     string         `gorm:"type:text" json:"logo_url"`
	VideoURL    string         `gorm:"type:text" json:"video_url"`
	Points      int            `json:"points"` // >= 0
	StartAt     time.Time      `json:"start_at"`
	EndAt       time.Time      `json:"end_at"` // >= StartAt
	APICall     *string        `gorm:"size:500;uniqueIndex:uk_campaign_api_call" json:"api_call,omitempty"`
	LastChecked time.Time      `json:"last_checked"`

	Timestamps
}

// UserAction records that a user completed an action. Append-only: rows are
// created and never updated.
type UserAction struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	ActionID  string    `gorm:"index;not null" json:"action_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
