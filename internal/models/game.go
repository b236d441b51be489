package models

import (
	"database/sql"
	"time"
)

// Game represents a single scheduled or completed game.
// StartDate is always stored in UTC.
type Game struct {
	ID         int            `db:"id"`
	ProviderID int            `db:"provider_id"`
	Season     int            `db:"season"`
	SeasonType sql.NullString `db:"season_type"`
	Week       sql.NullInt32  `db:"week"`
	HomeTeamID int            `db:"home_team_id"`
	AwayTeamID int            `db:"away_team_id"`
	VenueID    sql.NullInt32  `db:"venue_id"`
	StartDate  sql.NullTime   `db:"start_date"`
	HomeScore  sql.NullInt32  `db:"home_score"`
	AwayScore  sql.NullInt32  `db:"away_score"`
	Attendance sql.NullInt32  `db:"attendance"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// GamePayload is a game record as returned by the provider API.
// Team linkage arrives as school names, venue linkage as the venue's
// provider id; both are resolved to local ids during reconciliation.
type GamePayload struct {
	ID         int    `json:"id"`
	Season     int    `json:"season"`
	SeasonType string `json:"seasonType"`
	Week       *int   `json:"week,omitempty"`
	HomeTeam   string `json:"homeTeam"`
	AwayTeam   string `json:"awayTeam"`
	HomePoints *int   `json:"homePoints,omitempty"`
	AwayPoints *int   `json:"awayPoints,omitempty"`
	StartDate  string `json:"startDate"` // ISO 8601, 'Z' suffix
	VenueID    *int   `json:"venueId,omitempty"`
	Attendance *int   `json:"attendance,omitempty"`
}

// ToGame converts a provider payload to a Game model. The local team ids must
// already be resolved by the caller; venueID is zero when no venue resolved.
func (gp *GamePayload) ToGame(season, homeTeamID, awayTeamID, venueID int) *Game {
	game := &Game{
		ProviderID: gp.ID,
		Season:     season,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
	}

	if gp.SeasonType != "" {
		game.SeasonType = sql.NullString{String: gp.SeasonType, Valid: true}
	}
	if gp.Week != nil {
		game.Week = sql.NullInt32{Int32: int32(*gp.Week), Valid: true}
	}
	if venueID > 0 {
		game.VenueID = sql.NullInt32{Int32: int32(venueID), Valid: true}
	}
	if gp.HomePoints != nil {
		game.HomeScore = sql.NullInt32{Int32: int32(*gp.HomePoints), Valid: true}
	}
	if gp.AwayPoints != nil {
		game.AwayScore = sql.NullInt32{Int32: int32(*gp.AwayPoints), Valid: true}
	}
	if gp.Attendance != nil {
		game.Attendance = sql.NullInt32{Int32: int32(*gp.Attendance), Valid: true}
	}

	// Parse start date and normalize to UTC
	if gp.StartDate != "" {
		if start, err := time.Parse(time.RFC3339, gp.StartDate); err == nil {
			game.StartDate = sql.NullTime{Time: start.UTC(), Valid: true}
		}
	}

	return game
}

// IsPlayed returns true once both final scores are known
func (g *Game) IsPlayed() bool {
	return g.HomeScore.Valid && g.AwayScore.Valid
}
