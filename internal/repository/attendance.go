package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"cfbtracker/backend/internal/metrics"
	"cfbtracker/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// AttendanceRepository handles user game attendance operations
type AttendanceRepository struct {
	q DBTX
}

const attendanceColumns = `id, user_id, game_id, notes, created_at, updated_at`

func scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var att models.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.GameID, &att.Notes,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Mark records that the user attended the game. Marking the same game twice
// returns ErrAlreadyAttended.
func (r *AttendanceRepository) Mark(ctx context.Context, userID, gameID int, notes string) (*models.Attendance, error) {
	att := &models.Attendance{
		UserID: userID,
		GameID: gameID,
	}
	if notes != "" {
		att.Notes = sql.NullString{String: notes, Valid: true}
	}

	query := `
		INSERT INTO user_game_attendance (user_id, game_id, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, att.UserID, att.GameID, att.Notes).
		Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)

	if isUniqueViolation(err) {
		metrics.AttendanceMarksTotal.WithLabelValues("duplicate").Inc()
		return nil, fmt.Errorf("user=%d game=%d: %w", userID, gameID, ErrAlreadyAttended)
	}
	if err != nil {
		metrics.AttendanceMarksTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}

	metrics.AttendanceMarksTotal.WithLabelValues("created").Inc()
	log.Debug().
		Int("user_id", userID).
		Int("game_id", gameID).
		Msg("Attendance marked")

	return att, nil
}

// MarkBulk marks several games as attended in one pass. Individual failures
// do not abort the batch; each is reported in the result's error list.
func (r *AttendanceRepository) MarkBulk(ctx context.Context, userID int, items []models.BulkAttendanceItem) (*models.BulkAttendanceResult, error) {
	result := &models.BulkAttendanceResult{Errors: []string{}}

	for _, item := range items {
		var exists bool
		err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, item.GameID).Scan(&exists)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("game %d: %v", item.GameID, err))
			continue
		}
		if !exists {
			result.Errors = append(result.Errors, fmt.Sprintf("game %d not found", item.GameID))
			continue
		}

		if _, err := r.Mark(ctx, userID, item.GameID, item.Notes); err != nil {
			if errors.Is(err, ErrAlreadyAttended) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("game %d: %v", item.GameID, err))
			continue
		}

		result.Created++
	}

	log.Info().
		Int("user_id", userID).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("Bulk attendance marking complete")

	return result, nil
}

// UpdateNotes replaces the notes on an attendance record owned by the user
func (r *AttendanceRepository) UpdateNotes(ctx context.Context, id, userID int, notes string) (*models.Attendance, error) {
	var noteVal sql.NullString
	if notes != "" {
		noteVal = sql.NullString{String: notes, Valid: true}
	}

	query := `
		UPDATE user_game_attendance
		SET notes = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(r.q.QueryRow(ctx, query, noteVal, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("attendance id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}

	return att, nil
}

// Unmark removes an attendance record owned by the user
func (r *AttendanceRepository) Unmark(ctx context.Context, id, userID int) error {
	result, err := r.q.Exec(ctx,
		`DELETE FROM user_game_attendance WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("attendance id=%d: %w", id, ErrNotFound)
	}

	return nil
}

// ListByUser retrieves the user's attendance records, newest first
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM user_game_attendance
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}

	return records, nil
}

// Stats aggregates the user's attendance history. Per-team counts include
// both home and away sides but only fbs-classified teams.
func (r *AttendanceRepository) Stats(ctx context.Context, userID int) (*models.AttendanceStats, error) {
	query := `
		SELECT g.season,
		       ht.school, ht.classification,
		       aw.school, aw.classification,
		       v.name, v.state
		FROM user_game_attendance a
		JOIN games g ON g.id = a.game_id
		JOIN teams ht ON ht.id = g.home_team_id
		JOIN teams aw ON aw.id = g.away_team_id
		LEFT JOIN venues v ON v.id = g.venue_id
		WHERE a.user_id = $1
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance stats: %w", err)
	}
	defer rows.Close()

	stats := &models.AttendanceStats{
		GamesByTeam:   map[string]int{},
		GamesBySeason: map[int]int{},
		VenuesVisited: []string{},
		StatesVisited: []string{},
	}
	venues := map[string]struct{}{}
	states := map[string]struct{}{}

	for rows.Next() {
		var (
			season                 int
			homeSchool, awaySchool string
			homeClass, awayClass   string
			venueName, venueState  sql.NullString
		)
		err := rows.Scan(&season, &homeSchool, &homeClass, &awaySchool, &awayClass, &venueName, &venueState)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance stats row: %w", err)
		}

		stats.TotalGames++
		stats.GamesBySeason[season]++

		if homeClass == models.DefaultClassification {
			stats.GamesByTeam[homeSchool]++
		}
		if awayClass == models.DefaultClassification {
			stats.GamesByTeam[awaySchool]++
		}

		if venueName.Valid {
			venues[venueName.String] = struct{}{}
			if venueState.Valid {
				states[venueState.String] = struct{}{}
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance stats: %w", err)
	}

	for name := range venues {
		stats.VenuesVisited = append(stats.VenuesVisited, name)
	}
	for state := range states {
		stats.StatesVisited = append(stats.StatesVisited, state)
	}
	sort.Strings(stats.VenuesVisited)
	sort.Strings(stats.StatesVisited)

	stats.UniqueVenues = len(venues)
	stats.UniqueStates = len(states)

	return stats, nil
}
