package importer

import (
	"context"
	"fmt"

	"cfbtracker/backend/internal/metrics"
	"cfbtracker/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// StageResult counts the outcomes of one reconciliation stage
type StageResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// GameSkip describes a single game record that could not be reconciled.
// Skips are expected (schedules reference teams outside the imported
// division) and never abort a stage.
type GameSkip struct {
	ProviderID int    `json:"provider_id"`
	Reason     string `json:"reason"`
}

func (r *StageResult) record(stage, outcome string) {
	metrics.ImportRecordsTotal.WithLabelValues(stage, outcome).Inc()
}

// reconcileTeams matches each provider team to at most one local row by
// provider id, overwriting descriptive fields on match and inserting
// otherwise. The provider is authoritative: local edits to descriptive
// fields do not survive a re-import.
func reconcileTeams(ctx context.Context, store TeamStore, payloads []models.TeamPayload) (StageResult, error) {
	var result StageResult

	existing, err := store.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load existing teams: %w", err)
	}

	byProviderID := make(map[int]*models.Team, len(existing))
	for _, team := range existing {
		if team.ProviderID.Valid {
			byProviderID[int(team.ProviderID.Int32)] = team
		}
	}

	for i := range payloads {
		payload := &payloads[i]
		incoming := payload.ToTeam()

		if current, ok := byProviderID[payload.ID]; ok {
			incoming.ID = current.ID
			if err := store.Update(ctx, incoming); err != nil {
				log.Error().Err(err).Int("provider_id", payload.ID).Msg("Failed to update team")
				result.Errors++
				result.record("teams", "error")
				continue
			}
			result.Updated++
			result.record("teams", "updated")
			continue
		}

		if err := store.Create(ctx, incoming); err != nil {
			log.Error().Err(err).Int("provider_id", payload.ID).Msg("Failed to create team")
			result.Errors++
			result.record("teams", "error")
			continue
		}
		byProviderID[payload.ID] = incoming
		result.Created++
		result.record("teams", "created")
	}

	return result, nil
}

// reconcileVenues applies the same provider-id matching as reconcileTeams
func reconcileVenues(ctx context.Context, store VenueStore, payloads []models.VenuePayload) (StageResult, error) {
	var result StageResult

	existing, err := store.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load existing venues: %w", err)
	}

	byProviderID := make(map[int]*models.Venue, len(existing))
	for _, venue := range existing {
		if venue.ProviderID.Valid {
			byProviderID[int(venue.ProviderID.Int32)] = venue
		}
	}

	for i := range payloads {
		payload := &payloads[i]
		incoming := payload.ToVenue()

		if current, ok := byProviderID[payload.ID]; ok {
			incoming.ID = current.ID
			if err := store.Update(ctx, incoming); err != nil {
				log.Error().Err(err).Int("provider_id", payload.ID).Msg("Failed to update venue")
				result.Errors++
				result.record("venues", "error")
				continue
			}
			result.Updated++
			result.record("venues", "updated")
			continue
		}

		if err := store.Create(ctx, incoming); err != nil {
			log.Error().Err(err).Int("provider_id", payload.ID).Msg("Failed to create venue")
			result.Errors++
			result.record("venues", "error")
			continue
		}
		byProviderID[payload.ID] = incoming
		result.Created++
		result.record("venues", "created")
	}

	return result, nil
}

// reconcileGames matches provider games by provider id and resolves their
// team references by exact school name and venue references by provider id
// against the already-committed catalog. A game whose home or away team does
// not resolve is skipped and counted, never raised; a missing venue leaves
// venue_id null.
//
// School-name resolution keeps the first team seen per name. Resolving by
// team provider id instead would be sturdier, but the games payload carries
// only school names.
func reconcileGames(ctx context.Context, store GameStore, teams []*models.Team, venues []*models.Venue, season int, payloads []models.GamePayload) (StageResult, []GameSkip, error) {
	var result StageResult
	skips := []GameSkip{}

	bySchool := make(map[string]int, len(teams))
	for _, team := range teams {
		if _, ok := bySchool[team.School]; !ok {
			bySchool[team.School] = team.ID
		}
	}

	venueByProviderID := make(map[int]int, len(venues))
	for _, venue := range venues {
		if venue.ProviderID.Valid {
			venueByProviderID[int(venue.ProviderID.Int32)] = venue.ID
		}
	}

	// The index spans every season: provider game ids are globally unique,
	// and a game occasionally moves across a season boundary upstream
	existing, err := store.List(ctx)
	if err != nil {
		return result, nil, fmt.Errorf("failed to load existing games: %w", err)
	}

	byProviderID := make(map[int]*models.Game, len(existing))
	for _, game := range existing {
		byProviderID[game.ProviderID] = game
	}

	for i := range payloads {
		payload := &payloads[i]

		homeTeamID, homeOK := bySchool[payload.HomeTeam]
		awayTeamID, awayOK := bySchool[payload.AwayTeam]
		if !homeOK || !awayOK {
			school := payload.HomeTeam
			if homeOK {
				school = payload.AwayTeam
			}
			skips = append(skips, GameSkip{
				ProviderID: payload.ID,
				Reason:     fmt.Sprintf("team %q not in local catalog", school),
			})
			result.Skipped++
			result.record("games", "skipped")
			continue
		}

		// Venue linkage is optional; an unresolvable venue still yields a game
		venueID := 0
		if payload.VenueID != nil {
			venueID = venueByProviderID[*payload.VenueID]
		}

		incoming := payload.ToGame(season, homeTeamID, awayTeamID, venueID)

		if current, ok := byProviderID[payload.ID]; ok {
			incoming.ID = current.ID
			if err := store.Update(ctx, incoming); err != nil {
				log.Error().Err(err).Int("provider_id", payload.ID).Msg("Failed to update game")
				result.Errors++
				result.record("games", "error")
				continue
			}
			result.Updated++
			result.record("games", "updated")
			continue
		}

		if err := store.Create(ctx, incoming); err != nil {
			log.Error().Err(err).Int("provider_id", payload.ID).Msg("Failed to create game")
			result.Errors++
			result.record("games", "error")
			continue
		}
		byProviderID[payload.ID] = incoming
		result.Created++
		result.record("games", "created")
	}

	return result, skips, nil
}
