package models

import (
	"database/sql"
	"time"
)

// Venue represents a stadium where games are played
type Venue struct {
	ID         int            `db:"id"`
	ProviderID sql.NullInt32  `db:"provider_id"`
	Name       string         `db:"name"`
	City       sql.NullString `db:"city"`
	State      sql.NullString `db:"state"`
	Capacity   sql.NullInt32  `db:"capacity"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// VenuePayload is a venue record as returned by the provider API
type VenuePayload struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	State    string `json:"state"`
	Capacity *int   `json:"capacity,omitempty"`
}

// ToVenue converts a provider payload to a Venue model
func (vp *VenuePayload) ToVenue() *Venue {
	venue := &Venue{
		ProviderID: sql.NullInt32{Int32: int32(vp.ID), Valid: true},
		Name:       vp.Name,
	}

	if vp.City != "" {
		venue.City = sql.NullString{String: vp.City, Valid: true}
	}
	if vp.State != "" {
		venue.State = sql.NullString{String: vp.State, Valid: true}
	}
	if vp.Capacity != nil && *vp.Capacity > 0 {
		venue.Capacity = sql.NullInt32{Int32: int32(*vp.Capacity), Valid: true}
	}

	return venue
}
