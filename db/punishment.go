package db

import (
	"fmt"
	"time"
	"warden/model"

	"github.com/jmoiron/sqlx"
)

// CreatePunishment inserts a punishment referencing the violated probation
// and the incident that triggered it, returning the new row's ID.
func CreatePunishment(db *sqlx.DB, probationID, incidentID int64, until, at time.Time) (int64, error) {
	result, err := db.Exec(
		"INSERT INTO punishments (probation_id, incident_id, until, at) VALUES (?, ?, ?, ?)",
		probationID, incidentID, until.Unix(), at.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert punishment for probation %d: %w", probationID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get punishment ID: %w", err)
	}
	return id, nil
}

// GetUnexecutedPunishments retrieves punishments whose real-world penalty has
// not been applied yet, joined with the triggering incident.
func GetUnexecutedPunishments(db *sqlx.DB) ([]model.PunishmentCase, error) {
	var cases []model.PunishmentCase
	query := `SELECT u.id, u.probation_id, u.incident_id, u.until, u.executed, u.at,
			  i.guild_sf, i.offender_sf
			  FROM punishments u JOIN incidents i ON i.id = u.incident_id
			  WHERE u.executed = 0
			  ORDER BY u.id`
	if err := db.Select(&cases, query); err != nil {
		return nil, fmt.Errorf("failed to get unexecuted punishments: %w", err)
	}
	return cases, nil
}

// MarkPunishmentExecuted sets the one-shot executed flag.
func MarkPunishmentExecuted(db *sqlx.DB, id int64) error {
	if _, err := db.Exec("UPDATE punishments SET executed = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to mark punishment %d executed: %w", id, err)
	}
	return nil
}

// CountProbationsForIncident reports how many probations reference an
// incident.
func CountProbationsForIncident(db *sqlx.DB, incidentID int64) (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM probations WHERE incident_id = ?", incidentID); err != nil {
		return 0, fmt.Errorf("failed to count probations for incident %d: %w", incidentID, err)
	}
	return count, nil
}
