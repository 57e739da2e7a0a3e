package entities

import "time"

// AlertTrigger is one ledger row: "this rule fired for this narrative under
// this dedup key". Rows are inserted at most once per unique key and never
// deleted; NotificationSent flips to true after a successful send.
type AlertTrigger struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RuleID           uint      `gorm:"not null;uniqueIndex:idx_alert_triggers_dedup,priority:1" json:"rule_id"`
	NarrativeID      uint      `gorm:"not null;uniqueIndex:idx_alert_triggers_dedup,priority:2" json:"narrative_id"`
	DedupKey         string    `gorm:"size:64;not null;uniqueIndex:idx_alert_triggers_dedup,priority:3" json:"dedup_key"`
	ObservedValue    *int64    `json:"observed_value,omitempty"`
	TriggeredAt      time.Time `gorm:"not null;index" json:"triggered_at"`
	NotificationSent bool      `gorm:"not null;default:false;index" json:"notification_sent"`
	Metadata         string    `gorm:"type:text;default:''" json:"metadata"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	Rule             AlertRule `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for GORM.
func (AlertTrigger) TableName() string {
	return "alert_triggers"
}
