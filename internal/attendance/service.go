// Package attendance composes the attendance store with the Redis stats
// cache. It is the surface the surrounding application consumes: every write
// invalidates the user's cached stats, so a stale aggregate never outlives
// a change.
package attendance

import (
	"context"
	"errors"
	"time"

	"cfbtracker/backend/internal/cache"
	"cfbtracker/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Store is the attendance persistence the service drives
type Store interface {
	Mark(ctx context.Context, userID, gameID int, notes string) (*models.Attendance, error)
	MarkBulk(ctx context.Context, userID int, items []models.BulkAttendanceItem) (*models.BulkAttendanceResult, error)
	UpdateNotes(ctx context.Context, id, userID int, notes string) (*models.Attendance, error)
	Unmark(ctx context.Context, id, userID int) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Attendance, error)
	Stats(ctx context.Context, userID int) (*models.AttendanceStats, error)
}

// Cache is the slice of the Redis cache the service needs
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, pattern string) error
}

var _ Cache = (*cache.RedisCache)(nil)

// Service fronts attendance reads and writes with stats caching
type Service struct {
	store Store
	cache Cache
	ttl   time.Duration
}

// NewService creates a Service. ttl bounds how long cached stats may lag
// behind writes made outside this service (e.g. a season re-import).
func NewService(store Store, c Cache, ttl time.Duration) *Service {
	return &Service{store: store, cache: c, ttl: ttl}
}

// Stats returns the user's attendance aggregate, served from cache when
// fresh. Cache failures degrade to the database, never to an error.
func (s *Service) Stats(ctx context.Context, userID int) (*models.AttendanceStats, error) {
	key := cache.StatsKey(userID)

	var cached models.AttendanceStats
	err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Int("user_id", userID).Msg("Stats cache read failed")
	}

	stats, err := s.store.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, stats, s.ttl); err != nil {
		log.Warn().Err(err).Int("user_id", userID).Msg("Stats cache write failed")
	}

	return stats, nil
}

// Mark records attendance and drops the user's cached stats
func (s *Service) Mark(ctx context.Context, userID, gameID int, notes string) (*models.Attendance, error) {
	att, err := s.store.Mark(ctx, userID, gameID, notes)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return att, nil
}

// MarkBulk marks several games and drops the user's cached stats
func (s *Service) MarkBulk(ctx context.Context, userID int, items []models.BulkAttendanceItem) (*models.BulkAttendanceResult, error) {
	result, err := s.store.MarkBulk(ctx, userID, items)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return result, nil
}

// UpdateNotes updates an attendance record and drops the user's cached stats
func (s *Service) UpdateNotes(ctx context.Context, id, userID int, notes string) (*models.Attendance, error) {
	att, err := s.store.UpdateNotes(ctx, id, userID, notes)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return att, nil
}

// Unmark removes an attendance record and drops the user's cached stats
func (s *Service) Unmark(ctx context.Context, id, userID int) error {
	if err := s.store.Unmark(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// FlushStats drops every user's cached stats. Used after a catalog import,
// which changes the games and venues stats are computed from.
func (s *Service) FlushStats(ctx context.Context) error {
	return s.cache.Delete(ctx, cache.StatsPattern)
}

// ListByUser passes through; listings are not cached
func (s *Service) ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Attendance, error) {
	return s.store.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) invalidate(ctx context.Context, userID int) {
	if err := s.cache.Delete(ctx, cache.StatsKey(userID)); err != nil {
		log.Warn().Err(err).Int("user_id", userID).Msg("Failed to invalidate stats cache")
	}
}
