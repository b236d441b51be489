package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"cfbtracker/backend/internal/cache"
	"cfbtracker/backend/internal/models"
	"cfbtracker/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache stores JSON blobs in memory and records write traffic
type fakeCache struct {
	data    map[string][]byte
	setTTLs map[string]time.Duration
	getErr  error
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data:    map[string][]byte{},
		setTTLs: map[string]time.Duration{},
	}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = data
	c.setTTLs[key] = ttl
	return nil
}

func (c *fakeCache) Delete(_ context.Context, pattern string) error {
	c.deletes = append(c.deletes, pattern)
	delete(c.data, pattern)
	return nil
}

// fakeAttendanceStore serves canned rows and counts stats computations
type fakeAttendanceStore struct {
	stats      *models.AttendanceStats
	statsCalls int
	markErr    error
}

func (s *fakeAttendanceStore) Mark(_ context.Context, userID, gameID int, notes string) (*models.Attendance, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	return &models.Attendance{ID: 1, UserID: userID, GameID: gameID}, nil
}

func (s *fakeAttendanceStore) MarkBulk(_ context.Context, userID int, items []models.BulkAttendanceItem) (*models.BulkAttendanceResult, error) {
	return &models.BulkAttendanceResult{Created: len(items), Errors: []string{}}, nil
}

func (s *fakeAttendanceStore) UpdateNotes(_ context.Context, id, userID int, notes string) (*models.Attendance, error) {
	return &models.Attendance{ID: id, UserID: userID}, nil
}

func (s *fakeAttendanceStore) Unmark(_ context.Context, id, userID int) error {
	return nil
}

func (s *fakeAttendanceStore) ListByUser(_ context.Context, userID, limit, offset int) ([]*models.Attendance, error) {
	return []*models.Attendance{{ID: 1, UserID: userID}}, nil
}

func (s *fakeAttendanceStore) Stats(_ context.Context, userID int) (*models.AttendanceStats, error) {
	s.statsCalls++
	return s.stats, nil
}

func testStats() *models.AttendanceStats {
	return &models.AttendanceStats{
		TotalGames:    2,
		UniqueVenues:  1,
		UniqueStates:  1,
		GamesByTeam:   map[string]int{"Alabama": 2},
		GamesBySeason: map[int]int{2024: 2},
		VenuesVisited: []string{"Bryant-Denny Stadium"},
		StatesVisited: []string{"AL"},
	}
}

func newTestService() (*Service, *fakeAttendanceStore, *fakeCache) {
	store := &fakeAttendanceStore{stats: testStats()}
	c := newFakeCache()
	return NewService(store, c, 10*time.Minute), store, c
}

func TestServiceStats_CachesOnMiss(t *testing.T) {
	ctx := context.Background()
	svc, store, c := newTestService()

	stats, err := svc.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, store.statsCalls, "miss should compute from the store")

	key := cache.StatsKey(7)
	assert.Contains(t, c.data, key, "computed stats should be cached")
	assert.Equal(t, 10*time.Minute, c.setTTLs[key])
}

func TestServiceStats_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	_, err := svc.Stats(ctx, 7)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, store.statsCalls, "second read should hit the cache")
	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, []string{"AL"}, stats.StatesVisited)
}

func TestServiceStats_CacheErrorFallsThrough(t *testing.T) {
	ctx := context.Background()
	svc, store, c := newTestService()
	c.getErr = errors.New("connection refused")

	stats, err := svc.Stats(ctx, 7)
	require.NoError(t, err, "cache failures must not surface to the caller")
	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, store.statsCalls)
}

func TestServiceMark_InvalidatesStats(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newTestService()

	_, err := svc.Stats(ctx, 7)
	require.NoError(t, err)
	require.Contains(t, c.data, cache.StatsKey(7))

	_, err = svc.Mark(ctx, 7, 100, "")
	require.NoError(t, err)

	assert.NotContains(t, c.data, cache.StatsKey(7), "a write must drop the user's cached stats")
	assert.Equal(t, []string{cache.StatsKey(7)}, c.deletes)
}

func TestServiceMark_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	svc, store, c := newTestService()
	store.markErr = fmt.Errorf("user=7 game=100: %w", repository.ErrAlreadyAttended)

	_, err := svc.Stats(ctx, 7)
	require.NoError(t, err)

	_, err = svc.Mark(ctx, 7, 100, "")
	require.ErrorIs(t, err, repository.ErrAlreadyAttended)

	assert.Contains(t, c.data, cache.StatsKey(7), "a rejected write changes nothing")
	assert.Empty(t, c.deletes)
}

func TestServiceFlushStats_DropsAllUsers(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newTestService()

	err := svc.FlushStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{cache.StatsPattern}, c.deletes)
}

func TestServiceWrites_AllInvalidate(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newTestService()

	_, err := svc.MarkBulk(ctx, 7, []models.BulkAttendanceItem{{GameID: 100}})
	require.NoError(t, err)

	_, err = svc.UpdateNotes(ctx, 1, 7, "front row")
	require.NoError(t, err)

	err = svc.Unmark(ctx, 1, 7)
	require.NoError(t, err)

	assert.Len(t, c.deletes, 3, "every write path drops the cached stats")
	for _, key := range c.deletes {
		assert.Equal(t, cache.StatsKey(7), key)
	}
}
