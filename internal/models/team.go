package models

import (
	"database/sql"
	"time"
)

// DefaultClassification is applied to teams that predate the classification
// column and to provider records that omit it.
const DefaultClassification = "fbs"

// Team represents a college football team
type Team struct {
	ID             int            `db:"id"`
	ProviderID     sql.NullInt32  `db:"provider_id"`
	School         string         `db:"school"`
	Mascot         sql.NullString `db:"mascot"`
	Abbreviation   sql.NullString `db:"abbreviation"`
	Conference     sql.NullString `db:"conference"`
	Division       sql.NullString `db:"division"`
	Classification string         `db:"classification"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// TeamPayload is a team record as returned by the provider API
type TeamPayload struct {
	ID             int    `json:"id"`
	School         string `json:"school"`
	Mascot         string `json:"mascot"`
	Abbreviation   string `json:"abbreviation"`
	Conference     string `json:"conference"`
	Division       string `json:"division"`
	Classification string `json:"classification"`
}

// ToTeam converts a provider payload to a Team model
func (tp *TeamPayload) ToTeam() *Team {
	team := &Team{
		ProviderID:     sql.NullInt32{Int32: int32(tp.ID), Valid: true},
		School:         tp.School,
		Classification: tp.Classification,
	}

	if team.Classification == "" {
		team.Classification = DefaultClassification
	}
	if tp.Mascot != "" {
		team.Mascot = sql.NullString{String: tp.Mascot, Valid: true}
	}
	if tp.Abbreviation != "" {
		team.Abbreviation = sql.NullString{String: tp.Abbreviation, Valid: true}
	}
	if tp.Conference != "" {
		team.Conference = sql.NullString{String: tp.Conference, Valid: true}
	}
	if tp.Division != "" {
		team.Division = sql.NullString{String: tp.Division, Valid: true}
	}

	return team
}
