package entities

import "time"

// Video is an ingested piece of monitored content with a view counter.
type Video struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:500;default:''" json:"title"`
	Views     int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name for GORM.
func (Video) TableName() string {
	return "videos"
}

// Claim is a factual assertion extracted from a video.
type Claim struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VideoID   uint      `gorm:"not null;index" json:"video_id"`
	Text      string    `gorm:"type:text;default:''" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Video     Video     `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for GORM.
func (Claim) TableName() string {
	return "video_claims"
}

// ClaimNarrative links a claim into a narrative.
type ClaimNarrative struct {
	ClaimID     uint `gorm:"primaryKey;autoIncrement:false" json:"claim_id"`
	NarrativeID uint `gorm:"primaryKey;autoIncrement:false;index" json:"narrative_id"`
}

// TableName returns the table name for GORM.
func (ClaimNarrative) TableName() string {
	return "claim_narratives"
}
