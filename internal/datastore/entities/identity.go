package entities

import "time"

// User is a notification recipient. Identity management is owned by the
// surrounding CRUD layer; the engine only reads these rows.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:255;default:''" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Organisation is the tenant a user and their rules belong to.
type Organisation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Language    string    `gorm:"size:10;default:'en'" json:"language"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (Organisation) TableName() string {
	return "organisations"
}
