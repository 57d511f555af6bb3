package models

// Prize is part of a campaign's prize pool. Place orders prizes for
// winner-take-all campaigns; Chance marks raffle-style prizes drawn among
// all participants instead of awarded by rank.
type Prize struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID  string  `gorm:"index;not null" json:"campaign_id"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	LogoURL     string  `gorm:"type:text" json:"logo_url"`
	VideoURL    string  `gorm:"type:text" json:"video_url"`
	DollarValue float64 `gorm:"default:10" json:"dollar_value"`
	PointsValue int     `gorm:"default:100" json:"points_value"`
	Quantity    int     `gorm:"default:1" json:"quantity"` // >= 1
	Place       int     `gorm:"default:1" json:"place"`    // >= 1
	Chance      bool    `gorm:"default:false" json:"chance"`

	Timestamps
}
