// Package remoteconfig caches the remote config flag and sequences reads and
// writes against the API.
package remoteconfig

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// API is the subset of the API client used by the service
type API interface {
	GetRemoteConfig(ctx context.Context) (bool, error)
	SetRemoteConfig(ctx context.Context, value bool) (bool, error)
}

// Snapshot is the cached view of the flag
type Snapshot struct {
	Value     bool      `json:"value"`
	Known     bool      `json:"known"`      // False until the first successful call
	UpdatedAt time.Time `json:"updated_at"` // When the cached value was last confirmed by the API
	Version   uint64    `json:"version"`    // Request version that produced Value
}

// Service fetches and updates the flag. A fetch takes its version when it is
// sent and an update takes its version when the API answers, so an update's
// echo always outranks a fetch that was in flight alongside it. A response
// only replaces the cache when it is newer than what is cached, and updates
// are serialized so the last submitted value is the last one sent to the API.
type Service struct {
	api    API
	logger zerolog.Logger
	now    func() time.Time

	writeMu sync.Mutex

	mu      sync.Mutex
	issued  uint64
	current Snapshot
}

// NewService creates a remote config service
func NewService(api API, logger zerolog.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the cached snapshot without calling the API
func (s *Service) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Fetch reads the flag from the API. On failure the cache is left unchanged
// and the cached snapshot is returned with the error.
func (s *Service) Fetch(ctx context.Context) (Snapshot, error) {
	version := s.nextVersion()

	value, err := s.api.GetRemoteConfig(ctx)
	if err != nil {
		s.logger.Error().Err(err).Uint64("version", version).Msg("Failed to fetch remote config")
		return s.Current(), err
	}

	return s.apply(version, value), nil
}

// Update sends value to the API and caches the value the API echoes back.
// On failure the cache is left unchanged.
func (s *Service) Update(ctx context.Context, value bool) (Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	echoed, err := s.api.SetRemoteConfig(ctx, value)
	if err != nil {
		s.logger.Error().Err(err).Bool("requested", value).Msg("Failed to update remote config")
		return s.Current(), err
	}

	// Any fetch sent before this point may have read the old value
	version := s.nextVersion()
	snapshot := s.apply(version, echoed)

	s.logger.Info().
		Bool("requested", value).
		Bool("value", echoed).
		Uint64("version", version).
		Msg("Remote config updated")

	return snapshot, nil
}

func (s *Service) nextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// apply stores value if version is newer than the cached one and returns the
// resulting snapshot
func (s *Service) apply(version uint64, value bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version <= s.current.Version {
		s.logger.Debug().
			Uint64("version", version).
			Uint64("cached_version", s.current.Version).
			Msg("Discarding stale remote config response")
		return s.current
	}

	s.current = Snapshot{
		Value:     value,
		Known:     true,
		UpdatedAt: s.now(),
		Version:   version,
	}
	return s.current
}
