package entities

import "time"

// AlertRule defines a user-owned monitoring condition over the narrative
// corpus. Kind and scope are immutable after creation; only name, enabled,
// threshold and keyword may change.
type AlertRule struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	OrganisationID uint      `gorm:"not null;index" json:"organisation_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Kind           string    `gorm:"size:50;not null;index" json:"kind"`
	Scope          string    `gorm:"size:10;not null" json:"scope"`
	NarrativeID    *uint     `json:"narrative_id,omitempty"`
	Threshold      *int64    `json:"threshold,omitempty"`
	TopicID        *uint     `json:"topic_id,omitempty"`
	Keyword        string    `gorm:"size:255;default:''" json:"keyword,omitempty"`
	Enabled        bool      `gorm:"not null;index" json:"enabled"`
	Metadata       string    `gorm:"type:text;default:''" json:"metadata"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (AlertRule) TableName() string {
	return "alert_rules"
}
