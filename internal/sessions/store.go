// Package sessions persists signed-in console sessions.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/branchd-dev/remotecfg/internal/models"
)

// ErrNoSession is returned when a session does not exist or has expired
var ErrNoSession = errors.New("no session found")

// Store reads and writes session records
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a session store on top of an open database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create persists a new session valid for ttl
func (s *Store) Create(ctx context.Context, username string, isAdmin bool, apiToken string, ttl time.Duration) (*models.Session, error) {
	session := &models.Session{
		Username:  username,
		IsAdmin:   isAdmin,
		APIToken:  apiToken,
		ExpiresAt: s.now().Add(ttl),
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return session, nil
}

// Get returns a live session by ID
func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}

	var session models.Session
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Expired(s.now()) {
		return nil, ErrNoSession
	}

	return &session, nil
}

// Delete removes a session by ID. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns the removed IDs
func (s *Store) PurgeExpired(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Session{}).Where("expires_at <= ?", s.now()).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&models.Session{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return ids, nil
}

// SigningSecret returns configured when set. Otherwise it returns the secret
// persisted in the settings row, generating it on first use.
func (s *Store) SigningSecret(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	var settings models.Settings
	err := s.db.WithContext(ctx).First(&settings).Error
	if err == nil {
		return settings.SessionSecret, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}

	// 64 hex characters = 32 bytes of randomness
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}

	settings = models.Settings{SessionSecret: hex.EncodeToString(secretBytes)}
	if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return "", fmt.Errorf("failed to persist settings: %w", err)
	}

	return settings.SessionSecret, nil
}
