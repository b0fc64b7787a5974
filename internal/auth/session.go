package auth

import "github.com/branchd-dev/remotecfg/internal/models"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	APIToken  string `json:"-"`
}

// FromModel builds request session data from a stored session
func FromModel(s *models.Session) *SessionData {
	return &SessionData{
		SessionID: s.ID,
		Username:  s.Username,
		IsAdmin:   s.IsAdmin,
		APIToken:  s.APIToken,
	}
}
