package db

import (
	"database/sql"
	"fmt"
	"time"
	"warden/model"

	"github.com/jmoiron/sqlx"
)

// CreateIncident inserts a new incident row and returns its ID.
func CreateIncident(db *sqlx.DB, incident *model.Incident) (int64, error) {
	query := `INSERT INTO incidents (guild_sf, channel_sf, message_sf, offender_sf, msg_content, context, categories, at)
			  VALUES (:guild_sf, :channel_sf, :message_sf, :offender_sf, :msg_content, :context, :categories, :at)`

	result, err := db.NamedExec(query, incident)
	if err != nil {
		return 0, fmt.Errorf("failed to insert incident: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetIncident retrieves a single incident by its primary key.
func GetIncident(db *sqlx.DB, id int64) (*model.Incident, error) {
	var incident model.Incident
	err := db.Get(&incident, "SELECT * FROM incidents WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident %d: %w", id, err)
	}
	return &incident, nil
}

// GetUnprocessedIncidents retrieves incidents inside the statute-of-limitations
// window that have no resolution and no child rows of any kind, in insertion
// order. Re-running a cycle re-selects nothing that was already handled.
func GetUnprocessedIncidents(db *sqlx.DB, oldest time.Time) ([]model.Incident, error) {
	var incidents []model.Incident
	query := `SELECT * FROM incidents i
			  WHERE i.at > ?
			  AND i.resolution IS NULL
			  AND NOT EXISTS (SELECT 1 FROM victim_interventions v WHERE v.incident_id = i.id)
			  AND NOT EXISTS (SELECT 1 FROM group_interventions g WHERE g.incident_id = i.id)
			  AND NOT EXISTS (SELECT 1 FROM probations p WHERE p.incident_id = i.id)
			  AND NOT EXISTS (SELECT 1 FROM punishments u WHERE u.incident_id = i.id)
			  ORDER BY i.id`
	err := db.Select(&incidents, query, oldest.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed incidents: %w", err)
	}
	return incidents, nil
}

// ResolveIncident records the terminal outcome of an incident.
func ResolveIncident(db *sqlx.DB, id int64, resolution string) error {
	result, err := db.Exec("UPDATE incidents SET resolution = ? WHERE id = ?", resolution, id)
	if err != nil {
		return fmt.Errorf("failed to resolve incident %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for incident %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no incident found with id %d", id)
	}
	return nil
}

// ResolveWithVictimIntervention records the resolution and the victim
// intervention in one transaction, returning the new intervention's ID.
func ResolveWithVictimIntervention(db *sqlx.DB, incidentID int64, resolution, victimSf, rule string, at time.Time) (int64, error) {
	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE incidents SET resolution = ? WHERE id = ?", resolution, incidentID); err != nil {
		return 0, fmt.Errorf("failed to resolve incident %d: %w", incidentID, err)
	}
	result, err := tx.Exec(
		"INSERT INTO victim_interventions (incident_id, victim_sf, rule, at) VALUES (?, ?, ?, ?)",
		incidentID, victimSf, rule, at.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert victim intervention for incident %d: %w", incidentID, err)
	}
	interventionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get intervention ID: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit victim intervention: %w", err)
	}
	return interventionID, nil
}

// ResolveWithGroupProtection records the resolution, the group intervention
// and a fresh probation in one transaction.
func ResolveWithGroupProtection(db *sqlx.DB, incidentID int64, resolution, rule string, msgDeleted bool, expiresAt, at time.Time) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE incidents SET resolution = ? WHERE id = ?", resolution, incidentID); err != nil {
		return fmt.Errorf("failed to resolve incident %d: %w", incidentID, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO group_interventions (incident_id, rule, msg_deleted, at) VALUES (?, ?, ?, ?)",
		incidentID, rule, msgDeleted, at.Unix()); err != nil {
		return fmt.Errorf("failed to insert group intervention for incident %d: %w", incidentID, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO probations (incident_id, expires_at, at) VALUES (?, ?, ?)",
		incidentID, expiresAt.Unix(), at.Unix()); err != nil {
		return fmt.Errorf("failed to insert probation for incident %d: %w", incidentID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group protection: %w", err)
	}
	return nil
}

// GetVictimIntervention retrieves the victim intervention recorded against an
// incident, or nil if there is none.
func GetVictimIntervention(db *sqlx.DB, incidentID int64) (*model.VictimIntervention, error) {
	var intervention model.VictimIntervention
	err := db.Get(&intervention, "SELECT * FROM victim_interventions WHERE incident_id = ? LIMIT 1", incidentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get victim intervention for incident %d: %w", incidentID, err)
	}
	return &intervention, nil
}
