package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// purgeTimeout bounds a single purge run
const purgeTimeout = 30 * time.Second

// SessionPurger deletes expired sessions and returns their IDs
type SessionPurger interface {
	PurgeExpired(ctx context.Context) ([]string, error)
}

// StartSessionPurger runs PurgeExpired once now and then on schedule (standard
// five-field cron). onPurged, when not nil, receives the IDs removed by each
// run. Stop the returned cron to end it.
func StartSessionPurger(store SessionPurger, schedule string, onPurged func(ids []string), logger zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		purgeExpiredSessions(store, onPurged, logger)
	}); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}

	// Run immediately on startup, then on schedule
	purgeExpiredSessions(store, onPurged, logger)

	c.Start()
	logger.Info().Str("schedule", schedule).Msg("Session purger started")

	return c, nil
}

func purgeExpiredSessions(store SessionPurger, onPurged func(ids []string), logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to purge expired sessions")
		return
	}

	if len(purged) > 0 {
		if onPurged != nil {
			onPurged(purged)
		}
		logger.Info().Int("purged", len(purged)).Msg("Purged expired sessions")
		return
	}

	logger.Debug().Msg("No expired sessions to purge")
}
