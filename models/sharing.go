package models

import "time"

// SharingEventKind distinguishes the two trackable sharing events.
type SharingEventKind string

const (
	SharingEventPost  SharingEventKind = "post"
	SharingEventClick SharingEventKind = "click"
)

// SharingCampaign holds the sharing-only side of a campaign: the message
// posted to social networks and the destination the short links resolve to.
// Exactly one per campaign, created alongside it.
type SharingCampaign struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID string `gorm:"not null;uniqueIndex" json:"campaign_id"`
	PostText   string `gorm:"size:120;default:'Check this out and spread the word!'" json:"post_text"`
	LongURL    string `gorm:"type:text;not null" json:"long_url"`

	Timestamps
}

// SharingCampaignUser carries one user's personal share link for a campaign.
// ShareURL is immutable once issued; two users sharing the same campaign get
// distinct short URLs so the shortener's click analytics attribute back to
// exactly one user.
type SharingCampaignUser struct {
	ID                string `gorm:"primaryKey;type:uuid" json:"id"`
	SharingCampaignID string `gorm:"not null;uniqueIndex:uk_sharing_campaign_user" json:"sharing_campaign_id"`
	UserID            string `gorm:"not null;uniqueIndex:uk_sharing_campaign_user" json:"user_id"`

	// Token is the public per-user uniqueness token appended to the long URL
	// before shortening. Random, never reused.
	Token    string `gorm:"size:64;uniqueIndex" json:"token"`
	ShareURL string `gorm:"type:text;not null" json:"share_url"`

	// ClickCount is a cached copy of the shortener's click analytics,
	// refreshed by the click-sync worker. Not part of points accrual.
	ClickCount int64 `gorm:"default:0" json:"click_count"`

	Timestamps
}

// SharingAction is the sharing-only side of an action: which network it
// belongs to and whether it tracks posts or clicks. Network is nil for the
// click tracker, which cannot tell which network a click came from.
type SharingAction struct {
	ID       string           `gorm:"primaryKey;type:uuid" json:"id"`
	ActionID string           `gorm:"not null;uniqueIndex:uk_action_kind" json:"action_id"`
	Network  *SocialNetwork   `json:"network,omitempty"`
	Kind     SharingEventKind `gorm:"not null;uniqueIndex:uk_action_kind" json:"kind"`

	Timestamps
}

// SharingUserAction is the append-only event log: one row per post made or
// per click received.
type SharingUserAction struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string    `gorm:"index;not null" json:"user_id"`
	SharingActionID string    `gorm:"index;not null" json:"sharing_action_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
