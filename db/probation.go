package db

import (
	"database/sql"
	"fmt"
	"time"
	"warden/model"

	"github.com/jmoiron/sqlx"
)

// probationCaseColumns joins a probation to its originating incident and the
// rule from whichever intervention that incident carries.
const probationCaseColumns = `p.id, p.incident_id, p.expires_at, p.start_informed, p.end_informed, p.at,
			  i.guild_sf, i.offender_sf, i.msg_content,
			  COALESCE(
			      (SELECT v.rule FROM victim_interventions v WHERE v.incident_id = i.id LIMIT 1),
			      (SELECT g.rule FROM group_interventions g WHERE g.incident_id = i.id LIMIT 1),
			      '') AS rule`

// CreateProbation inserts a new probation for an incident and returns its ID.
func CreateProbation(db *sqlx.DB, incidentID int64, expiresAt, at time.Time) (int64, error) {
	result, err := db.Exec(
		"INSERT INTO probations (incident_id, expires_at, at) VALUES (?, ?, ?)",
		incidentID, expiresAt.Unix(), at.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert probation for incident %d: %w", incidentID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get probation ID: %w", err)
	}
	return id, nil
}

// GetStartUninformedProbations retrieves probations whose offender has not
// yet been told the probation began.
func GetStartUninformedProbations(db *sqlx.DB) ([]model.ProbationCase, error) {
	var cases []model.ProbationCase
	query := `SELECT ` + probationCaseColumns + `
			  FROM probations p JOIN incidents i ON i.id = p.incident_id
			  WHERE p.start_informed = 0
			  ORDER BY p.id`
	if err := db.Select(&cases, query); err != nil {
		return nil, fmt.Errorf("failed to get start-uninformed probations: %w", err)
	}
	return cases, nil
}

// GetExpiredUninformedProbations retrieves probations past expiry whose
// offender has not yet been told the probation ended.
func GetExpiredUninformedProbations(db *sqlx.DB, now time.Time) ([]model.ProbationCase, error) {
	var cases []model.ProbationCase
	query := `SELECT ` + probationCaseColumns + `
			  FROM probations p JOIN incidents i ON i.id = p.incident_id
			  WHERE p.expires_at < ? AND p.end_informed = 0
			  ORDER BY p.id`
	if err := db.Select(&cases, query, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get expired uninformed probations: %w", err)
	}
	return cases, nil
}

// MarkProbationStartInformed sets the one-shot start notification flag.
func MarkProbationStartInformed(db *sqlx.DB, id int64) error {
	if _, err := db.Exec("UPDATE probations SET start_informed = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to mark probation %d start-informed: %w", id, err)
	}
	return nil
}

// MarkProbationEndInformed sets the one-shot end notification flag.
func MarkProbationEndInformed(db *sqlx.DB, id int64) error {
	if _, err := db.Exec("UPDATE probations SET end_informed = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to mark probation %d end-informed: %w", id, err)
	}
	return nil
}

// FindActiveProbation retrieves one unexpired probation for the same guild
// and offender. With a victim scope the originating incident must carry a
// victim intervention naming that victim; unscoped it must carry a group
// intervention. Returns nil when nothing matches.
func FindActiveProbation(db *sqlx.DB, guildSf, offenderSf, victimSf string, now time.Time) (*model.Probation, error) {
	query := `SELECT p.* FROM probations p JOIN incidents i ON i.id = p.incident_id
			  WHERE i.guild_sf = ? AND i.offender_sf = ? AND p.expires_at > ?`
	args := []interface{}{guildSf, offenderSf, now.Unix()}

	if victimSf != "" {
		query += ` AND EXISTS (SELECT 1 FROM victim_interventions v WHERE v.incident_id = i.id AND v.victim_sf = ?)`
		args = append(args, victimSf)
	} else {
		query += ` AND EXISTS (SELECT 1 FROM group_interventions g WHERE g.incident_id = i.id)`
	}
	query += ` ORDER BY p.expires_at DESC LIMIT 1`

	var probation model.Probation
	err := db.Get(&probation, query, args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active probation for offender %s in guild %s: %w", offenderSf, guildSf, err)
	}
	return &probation, nil
}
