package models

import (
	"time"

	"gorm.io/gorm"
)

// GameType decides how prizes are awarded at the deadline
type GameType string

const (
	GameTypeRaffle        GameType = "raffle"
	GameTypeWinnerTakeAll GameType = "winner_take_all"
)

func (g GameType) Valid() bool {
	return g == GameTypeRaffle || g == GameTypeWinnerTakeAll
}

// Campaign represents an organizer-defined engagement unit with a deadline
// and a prize pool. Participants earn points by completing actions before
// the deadline.
type Campaign struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID     string    `gorm:"index;not null" json:"owner_id"` // ExternalUserID of the organizer
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"index" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Deadline    time.Time `gorm:"not null;index" json:"deadline"`
	GameType    GameType  `gorm:"not null;default:'winner_take_all'" json:"game_type"`
	LogoURL     string    `gorm:"type:text" json:"logo_url"`
	VideoURL    string    `gorm:"type:text" json:"video_url"`

	// PointsFrozen is set once the freeze job has snapshotted participant
	// totals into campaign_users.points_at_deadline.
	PointsFrozen bool `gorm:"default:false;index" json:"points_frozen"`

	Prizes  []Prize  `gorm:"foreignKey:CampaignID" json:"prizes,omitempty"`
	Actions []Action `gorm:"foreignKey:CampaignID" json:"actions,omitempty"`

	Timestamps
}

// Tomorrow is the default deadline for a campaign created without one.
// It is a function, not a stored default, so every creation gets a fresh value.
func Tomorrow(now time.Time) time.Time {
	return now.UTC().Add(24 * time.Hour)
}

// IsPast reports whether the campaign deadline has been reached.
// The deadline instant itself counts as past.
func (c *Campaign) IsPast(now time.Time) bool {
	return !now.Before(c.Deadline)
}

// remaining is the non-negative time left until the deadline.
func (c *Campaign) remaining(now time.Time) time.Duration {
	d := c.Deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// DaysTillDeadline returns the whole days left until the deadline.
func (c *Campaign) DaysTillDeadline(now time.Time) int {
	return int(c.remaining(now) / (24 * time.Hour))
}

// HoursTillDeadline returns the whole hours left modulo a day, i.e. the
// hour component of a days/hours/minutes countdown display.
func (c *Campaign) HoursTillDeadline(now time.Time) int {
	return int((c.remaining(now) % (24 * time.Hour)) / time.Hour)
}

// MinutesTillDeadline returns the whole minutes left within the final day.
func (c *Campaign) MinutesTillDeadline(now time.Time) int {
	return int((c.remaining(now) % (24 * time.Hour)) / time.Minute)
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
