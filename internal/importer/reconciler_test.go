package importer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cfbtracker/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestReconcileTeams_CreatesNewTeam(t *testing.T) {
	ctx := context.Background()
	store := &fakeTeamStore{}

	result, err := reconcileTeams(ctx, store, []models.TeamPayload{
		{ID: 1, School: "Alabama", Mascot: "Crimson Tide", Conference: "SEC"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "Alabama", store.rows[0].School)
	assert.Equal(t, int32(1), store.rows[0].ProviderID.Int32)
	assert.Equal(t, "fbs", store.rows[0].Classification, "classification should default")
}

func TestReconcileTeams_UpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := &fakeTeamStore{}

	_, err := reconcileTeams(ctx, store, []models.TeamPayload{
		{ID: 1, School: "Alabama"},
	})
	require.NoError(t, err)
	originalID := store.rows[0].ID

	// Same provider record, renamed upstream
	result, err := reconcileTeams(ctx, store, []models.TeamPayload{
		{ID: 1, School: "Crimson Tide A&M", Mascot: "Elephants"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, store.rows, 1)
	assert.Equal(t, originalID, store.rows[0].ID, "local id must not change across imports")
	assert.Equal(t, "Crimson Tide A&M", store.rows[0].School)
	assert.Equal(t, "Elephants", store.rows[0].Mascot.String)
}

func TestReconcileTeams_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := &fakeTeamStore{}
	payloads := []models.TeamPayload{
		{ID: 1, School: "Alabama"},
		{ID: 2, School: "Georgia"},
	}

	first, err := reconcileTeams(ctx, store, payloads)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := reconcileTeams(ctx, store, payloads)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created, "second run must not create rows")
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, store.rows, 2)
}

func TestReconcileVenues_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := &fakeVenueStore{}

	first, err := reconcileVenues(ctx, store, []models.VenuePayload{
		{ID: 10, Name: "Bryant-Denny Stadium", City: "Tuscaloosa", State: "AL", Capacity: intPtr(100077)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := reconcileVenues(ctx, store, []models.VenuePayload{
		{ID: 10, Name: "Bryant-Denny Stadium", City: "Tuscaloosa", State: "AL", Capacity: intPtr(101821)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
	require.Len(t, store.rows, 1)
	assert.Equal(t, int32(101821), store.rows[0].Capacity.Int32)
}

func seedCatalog(t *testing.T, store *fakeStore) {
	t.Helper()
	ctx := context.Background()

	_, err := reconcileTeams(ctx, store.teams, []models.TeamPayload{
		{ID: 1, School: "Alabama"},
		{ID: 2, School: "Georgia"},
	})
	require.NoError(t, err)

	_, err = reconcileVenues(ctx, store.venues, []models.VenuePayload{
		{ID: 10, Name: "Bryant-Denny Stadium", State: "AL"},
	})
	require.NoError(t, err)
}

func TestReconcileGames_ResolvesReferences(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedCatalog(t, store)

	result, skips, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{
		{
			ID: 100, HomeTeam: "Alabama", AwayTeam: "Georgia",
			StartDate: "2024-09-28T23:30:00.000Z",
			Week:      intPtr(5), VenueID: intPtr(10), SeasonType: "regular",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Empty(t, skips)
	require.Len(t, store.games.rows, 1)

	game := store.games.rows[0]
	assert.Equal(t, store.teams.rows[0].ID, game.HomeTeamID)
	assert.Equal(t, store.teams.rows[1].ID, game.AwayTeamID)
	assert.Equal(t, int32(store.venues.rows[0].ID), game.VenueID.Int32)
	assert.Equal(t, 2024, game.Season)
	assert.Equal(t, "regular", game.SeasonType.String)

	// Start dates are normalized to UTC
	require.True(t, game.StartDate.Valid)
	assert.Equal(t, time.UTC, game.StartDate.Time.Location())
	assert.Equal(t, time.Date(2024, 9, 28, 23, 30, 0, 0, time.UTC), game.StartDate.Time)
}

func TestReconcileGames_SkipsUnresolvedTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedCatalog(t, store)

	result, skips, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{
		{ID: 100, HomeTeam: "Unknown College", AwayTeam: "Georgia"},
		{ID: 101, HomeTeam: "Alabama", AwayTeam: "Georgia"},
	})
	require.NoError(t, err, "an unresolved team must not raise")

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Created, "remaining games in the batch still import")
	require.Len(t, skips, 1)
	assert.Equal(t, 100, skips[0].ProviderID)
	assert.Contains(t, skips[0].Reason, "Unknown College")
	assert.Len(t, store.games.rows, 1)
}

func TestReconcileGames_MissingVenueStillCreates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedCatalog(t, store)

	result, skips, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{
		{ID: 100, HomeTeam: "Alabama", AwayTeam: "Georgia", VenueID: intPtr(999)},
		{ID: 101, HomeTeam: "Georgia", AwayTeam: "Alabama"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Empty(t, skips)
	for _, game := range store.games.rows {
		assert.False(t, game.VenueID.Valid, "unresolvable venue leaves venue_id null")
	}
}

func TestReconcileGames_RerunUpdatesScores(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedCatalog(t, store)

	payload := models.GamePayload{
		ID: 100, HomeTeam: "Alabama", AwayTeam: "Georgia",
		StartDate: "2024-09-28T23:30:00.000Z",
	}

	first, _, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{payload})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	originalID := store.games.rows[0].ID

	// Game has now been played
	payload.HomePoints = intPtr(34)
	payload.AwayPoints = intPtr(41)
	payload.Attendance = intPtr(101821)

	second, _, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{payload})
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
	require.Len(t, store.games.rows, 1)

	game := store.games.rows[0]
	assert.Equal(t, originalID, game.ID, "local id must not change across imports")
	assert.Equal(t, int32(34), game.HomeScore.Int32)
	assert.Equal(t, int32(41), game.AwayScore.Int32)
	assert.Equal(t, int32(101821), game.Attendance.Int32)
}

func TestReconcileGames_SeasonReassignmentUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedCatalog(t, store)

	// January bowl games get filed under either calendar year upstream
	payload := models.GamePayload{
		ID: 300, HomeTeam: "Alabama", AwayTeam: "Georgia", SeasonType: "postseason",
	}

	first, _, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2023, []models.GamePayload{payload})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	originalID := store.games.rows[0].ID

	second, _, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{payload})
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created, "the provider id must match across seasons")
	assert.Equal(t, 1, second.Updated)
	assert.Equal(t, 0, second.Errors)
	require.Len(t, store.games.rows, 1)
	assert.Equal(t, originalID, store.games.rows[0].ID)
	assert.Equal(t, 2024, store.games.rows[0].Season, "the stored season follows the provider")
}

func TestReconcileGames_PostseasonWithoutWeek(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedCatalog(t, store)

	_, _, err := reconcileGames(ctx, store.games, store.teams.rows, store.venues.rows, 2024, []models.GamePayload{
		{ID: 200, HomeTeam: "Alabama", AwayTeam: "Georgia", SeasonType: "postseason"},
	})
	require.NoError(t, err)

	game := store.games.rows[0]
	assert.Equal(t, "postseason", game.SeasonType.String)
	assert.Equal(t, sql.NullInt32{}, game.Week, "postseason games carry no week")
}
