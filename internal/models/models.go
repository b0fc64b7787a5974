package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Settings is the console's own persisted state
// This is a singleton model (only one row should exist)
type Settings struct {
	BaseModel
	SessionSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first start (64 hex chars)
}

// Session is a signed-in console user. The browser only holds a signed
// cookie naming the session ID.
type Session struct {
	BaseModel
	Username  string    `json:"username" gorm:"not null"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null;default:false"`
	APIToken  string    `json:"-" gorm:"type:text;not null"` // Bearer token issued by the API at login
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AutoMigrate creates or updates the console tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Settings{}, &Session{})
}
