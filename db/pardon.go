package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CreatePardon records a victim's decision to forgive the offender of an
// incident, returning the new row's ID.
func CreatePardon(db *sqlx.DB, incidentID, interventionID int64, at time.Time) (int64, error) {
	result, err := db.Exec(
		"INSERT INTO pardons (incident_id, intervention_id, at) VALUES (?, ?, ?)",
		incidentID, interventionID, at.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert pardon for incident %d: %w", incidentID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get pardon ID: %w", err)
	}
	return id, nil
}

// HasRecentPardon reports whether the named victim pardoned this offender in
// this guild since the given cutoff.
func HasRecentPardon(db *sqlx.DB, guildSf, offenderSf, victimSf string, since time.Time) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM pardons pa
			  JOIN incidents i ON i.id = pa.incident_id
			  JOIN victim_interventions v ON v.id = pa.intervention_id
			  WHERE i.guild_sf = ? AND i.offender_sf = ? AND v.victim_sf = ? AND pa.at > ?`
	err := db.Get(&count, query, guildSf, offenderSf, victimSf, since.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to look up pardons for offender %s in guild %s: %w", offenderSf, guildSf, err)
	}
	return count > 0, nil
}
