package entities

import "time"

// AlertExecution records one completed evaluation cycle. The most recent
// row's ExecutedAt is the lower bound of the next cycle's time window.
type AlertExecution struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExecutedAt time.Time `gorm:"not null;index" json:"executed_at"`
	Checked    int       `gorm:"not null" json:"checked"`
	Triggered  int       `gorm:"not null" json:"triggered"`
	Notified   int       `gorm:"not null" json:"notified"`
	Metadata   string    `gorm:"type:text;default:''" json:"metadata"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (AlertExecution) TableName() string {
	return "alert_executions"
}
