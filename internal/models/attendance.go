package models

import (
	"database/sql"
	"time"
)

// Attendance marks one game as personally attended by one user.
// At most one row may exist per (user, game) pair.
type Attendance struct {
	ID        int            `db:"id"`
	UserID    int            `db:"user_id"`
	GameID    int            `db:"game_id"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// AttendanceStats summarizes a user's attendance history
type AttendanceStats struct {
	TotalGames    int            `json:"total_games"`
	UniqueVenues  int            `json:"unique_venues"`
	UniqueStates  int            `json:"unique_states"`
	GamesByTeam   map[string]int `json:"games_by_team"`
	GamesBySeason map[int]int    `json:"games_by_season"`
	VenuesVisited []string       `json:"venues_visited"`
	StatesVisited []string       `json:"states_visited"`
}

// BulkAttendanceItem is a single entry in a bulk marking request
type BulkAttendanceItem struct {
	GameID int
	Notes  string
}

// BulkAttendanceResult reports the outcome of a bulk marking request,
// with one error entry per record that could not be processed
type BulkAttendanceResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
