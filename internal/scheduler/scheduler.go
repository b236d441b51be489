package scheduler

import (
	"context"
	"fmt"
	"time"

	"cfbtracker/backend/internal/attendance"
	"cfbtracker/backend/internal/config"
	"cfbtracker/backend/internal/importer"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the nightly catalog sync. Game schedules and scores change
// during the season, so the configured season is re-imported once a day
// during off-hours.
type Scheduler struct {
	cfg        *config.Config
	importer   *importer.Importer
	attendance *attendance.Service
	cron       *cron.Cron
	stopChan   chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, imp *importer.Importer, att *attendance.Service) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		importer:   imp,
		attendance: att,
		cron:       cron.New(),
		stopChan:   make(chan struct{}),
	}
}

// Start registers the nightly sync and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlySyncCron, func() {
		select {
		case <-s.stopChan:
			return
		default:
		}

		log.Info().Msg("Running nightly season sync...")
		if err := s.runSeasonSync(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly season sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlySyncCron).
		Msg("Nightly season sync scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	close(s.stopChan)
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("Scheduler stopped")
}

// SyncSeason resolves which season the nightly job imports
func (s *Scheduler) SyncSeason() int {
	if s.cfg.SyncSeason > 0 {
		return s.cfg.SyncSeason
	}
	return time.Now().UTC().Year()
}

func (s *Scheduler) runSeasonSync(ctx context.Context) error {
	season := s.SyncSeason()

	summary, err := s.importer.ImportSeason(ctx, season)
	if err != nil {
		return err
	}

	// Fresh catalog data invalidates cached attendance stats
	if err := s.attendance.FlushStats(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush attendance stats cache")
	}

	log.Info().
		Int("season", season).
		Int("teams_created", summary.Teams.Created).
		Int("teams_updated", summary.Teams.Updated).
		Int("venues_created", summary.Venues.Created).
		Int("games_created", summary.Games.Created).
		Int("games_updated", summary.Games.Updated).
		Int("games_skipped", summary.Games.Skipped).
		Msg("Nightly season sync complete")

	return nil
}
