package entities

import "time"

// Narrative is the monitored entity of the corpus: a cluster of related
// claims and videos with a human-readable title.
type Narrative struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:500;not null" json:"title"`
	Description string    `gorm:"type:text;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Narrative) TableName() string {
	return "narratives"
}

// Topic is a label narratives can carry (e.g. "elections", "health").
type Topic struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
}

// TableName returns the table name for GORM.
func (Topic) TableName() string {
	return "topics"
}

// NarrativeTopic links a narrative to a topic.
type NarrativeTopic struct {
	NarrativeID uint `gorm:"primaryKey;autoIncrement:false" json:"narrative_id"`
	TopicID     uint `gorm:"primaryKey;autoIncrement:false;index" json:"topic_id"`
}

// TableName returns the table name for GORM.
func (NarrativeTopic) TableName() string {
	return "narrative_topics"
}
