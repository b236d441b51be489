package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cfbtracker/backend/internal/migrate"
	"cfbtracker/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations.
// They expect a local Postgres with the cfbtracker_test database:
//   createdb cfbtracker_test

const (
	testDBHost     = "localhost"
	testDBPort     = "5432"
	testDBName     = "cfbtracker_test"
	testDBUser     = "cfbtracker_user"
	testDBPassword = "cfbtracker_password"
)

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     testDBHost,
		Port:     testDBPort,
		Database: testDBName,
		User:     testDBUser,
		Password: testDBPassword,
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		testDBHost, testDBPort, testDBUser, testDBPassword, testDBName,
	)
	require.NoError(t, migrate.Run(ctx, db.Pool, dsn), "Failed to migrate test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

// nextTestID hands out process-unique ids so fixtures from concurrent or
// repeated runs never collide on provider_id or email
var testIDCounter atomic.Int64

func nextTestID() int {
	if testIDCounter.Load() == 0 {
		testIDCounter.CompareAndSwap(0, time.Now().UnixNano()%1_000_000_000)
	}
	return int(testIDCounter.Add(1))
}

func createTestUser(t *testing.T, ctx context.Context, db *Database) *models.User {
	t.Helper()
	id := nextTestID()
	user := &models.User{
		Email:    fmt.Sprintf("fan%d@example.com", id),
		Username: fmt.Sprintf("fan%d", id),
	}
	require.NoError(t, db.Users.Create(ctx, user), "Should insert user")
	return user
}

func createTestTeam(t *testing.T, ctx context.Context, db *Database, school string) *models.Team {
	t.Helper()
	payload := models.TeamPayload{ID: nextTestID(), School: school, Conference: "SEC"}
	team := payload.ToTeam()
	require.NoError(t, db.Teams.Create(ctx, team), "Should insert team")
	return team
}

func createTestVenue(t *testing.T, ctx context.Context, db *Database, name, state string) *models.Venue {
	t.Helper()
	capacity := 100077
	payload := models.VenuePayload{ID: nextTestID(), Name: name, City: "Testville", State: state, Capacity: &capacity}
	venue := payload.ToVenue()
	require.NoError(t, db.Venues.Create(ctx, venue), "Should insert venue")
	return venue
}

func createTestGame(t *testing.T, ctx context.Context, db *Database, season int, home, away *models.Team, venue *models.Venue) *models.Game {
	t.Helper()
	week := 5
	payload := models.GamePayload{
		ID:        nextTestID(),
		Week:      &week,
		StartDate: "2024-09-28T23:30:00.000Z",
	}
	venueID := 0
	if venue != nil {
		venueID = venue.ID
	}
	game := payload.ToGame(season, home.ID, away.ID, venueID)
	require.NoError(t, db.Games.Create(ctx, game), "Should insert game")
	return game
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}

func TestDatabaseWithTx(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Rows created inside a rolled-back transaction must not persist
	tx, err := db.Pool.Begin(ctx)
	require.NoError(t, err)

	txdb := db.WithTx(tx)
	team := &models.Team{School: fmt.Sprintf("Rollback U %d", nextTestID()), Classification: models.DefaultClassification}
	require.NoError(t, txdb.Teams.Create(ctx, team))
	require.NoError(t, tx.Rollback(ctx))

	_, err = db.Teams.GetByID(ctx, team.ID)
	assert.ErrorIs(t, err, ErrNotFound, "Rolled-back rows should not be visible")
}
