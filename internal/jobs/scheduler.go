// Package jobs runs the recurring maintenance work: the nightly metrics
// sync and the hourly sweep of expired sessions and stale oauth states.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/shotlist/analytics-backend/internal/models"
	"github.com/shotlist/analytics-backend/internal/services"
)

const syncTimeout = 15 * time.Minute

type Scheduler struct {
	container *services.Container
	cron      *cron.Cron
	log       zerolog.Logger
}

func NewScheduler(container *services.Container) *Scheduler {
	return &Scheduler{
		container: container,
		cron:      cron.New(),
		log:       container.Log.With().Str("component", "jobs").Logger(),
	}
}

// Start registers the recurring jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.nightlySync); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.cleanup); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Msg("Job scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Job scheduler stopped")
}

// nightlySync refreshes social metrics for every user that has
// connected accounts. Failures are per-account; one user's bad token
// never blocks another user's sync.
func (s *Scheduler) nightlySync() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	var userIDs []uint
	err := s.container.DB.Model(&models.SocialAccount{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		s.log.Error().Err(err).Msg("Nightly sync could not list users")
		return
	}

	for _, userID := range userIDs {
		result, err := s.container.Social.SyncAll(ctx, userID)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", userID).Msg("Nightly sync failed")
			continue
		}
		s.log.Info().
			Uint("user_id", userID).
			Int("synced", result.Synced).
			Int("failed", result.Failed).
			Msg("Nightly sync finished")
	}
}

// cleanup sweeps expired sessions and abandoned oauth states.
func (s *Scheduler) cleanup() {
	sessions, err := s.container.Auth.CleanupExpiredSessions()
	if err != nil {
		s.log.Error().Err(err).Msg("Session cleanup failed")
	} else if sessions > 0 {
		s.log.Info().Int64("removed", sessions).Msg("Expired sessions removed")
	}

	states, err := s.container.OAuth.CleanupStale()
	if err != nil {
		s.log.Error().Err(err).Msg("OAuth state cleanup failed")
	} else if states > 0 {
		s.log.Info().Int64("removed", states).Msg("Stale oauth states removed")
	}
}
