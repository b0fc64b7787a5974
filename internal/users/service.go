// Package users lists and creates API users on behalf of a console session.
package users

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/branchd-dev/remotecfg/internal/apiclient"
	"github.com/branchd-dev/remotecfg/internal/auth"
)

// API is the subset of the API client used by the service
type API interface {
	ListUsers(ctx context.Context, token string) ([]apiclient.User, error)
	CreateUser(ctx context.Context, token string, req apiclient.CreateUserRequest) (*apiclient.User, error)
}

// Service wraps the users API and remembers the last list each session saw
type Service struct {
	api    API
	logger zerolog.Logger

	mu   sync.Mutex
	last map[string][]apiclient.User // keyed by session ID
}

// NewService creates a users service
func NewService(api API, logger zerolog.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger,
		last:   make(map[string][]apiclient.User),
	}
}

// List fetches all users with the session's token. On failure the list
// previously returned to this session is returned unchanged with the error.
func (s *Service) List(ctx context.Context, session *auth.SessionData) ([]apiclient.User, error) {
	users, err := s.api.ListUsers(ctx, session.APIToken)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", session.Username).Msg("Failed to list users")
		return s.Previous(session.SessionID), err
	}

	s.mu.Lock()
	s.last[session.SessionID] = users
	s.mu.Unlock()

	return users, nil
}

// Previous returns the last list successfully fetched for a session
func (s *Service) Previous(sessionID string) []apiclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[sessionID]
}

// Create adds a user with the session's token
func (s *Service) Create(ctx context.Context, session *auth.SessionData, req apiclient.CreateUserRequest) (*apiclient.User, error) {
	user, err := s.api.CreateUser(ctx, session.APIToken, req)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", req.Username).Msg("Failed to create user")
		return nil, err
	}

	s.logger.Info().
		Str("username", req.Username).
		Bool("is_admin", req.IsAdmin).
		Str("created_by", session.Username).
		Msg("User created")

	return user, nil
}

// Forget drops cached state for sessions that logged out or were purged
func (s *Service) Forget(sessionIDs ...string) {
	s.mu.Lock()
	for _, id := range sessionIDs {
		delete(s.last, id)
	}
	s.mu.Unlock()
}
