package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the database and ensures all necessary tables are created.
func Init(dbPath string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS incidents (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_sf TEXT NOT NULL,
	          channel_sf TEXT NOT NULL,
	          message_sf TEXT NOT NULL,
	          offender_sf TEXT NOT NULL,
	          msg_content TEXT NOT NULL,
	          context TEXT NOT NULL,
	          categories TEXT NOT NULL,
	          at INTEGER NOT NULL,
	          resolution TEXT
	      );
	      CREATE TABLE IF NOT EXISTS victim_interventions (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          incident_id INTEGER NOT NULL REFERENCES incidents(id),
	          victim_sf TEXT NOT NULL,
	          rule TEXT NOT NULL,
	          at INTEGER NOT NULL
	      );
	      CREATE TABLE IF NOT EXISTS group_interventions (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          incident_id INTEGER NOT NULL REFERENCES incidents(id),
	          rule TEXT NOT NULL,
	          msg_deleted INTEGER NOT NULL DEFAULT 0,
	          at INTEGER NOT NULL
	      );
	      CREATE TABLE IF NOT EXISTS pardons (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          incident_id INTEGER NOT NULL REFERENCES incidents(id),
	          intervention_id INTEGER NOT NULL REFERENCES victim_interventions(id),
	          at INTEGER NOT NULL
	      );
	      CREATE TABLE IF NOT EXISTS probations (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          incident_id INTEGER NOT NULL REFERENCES incidents(id),
	          expires_at INTEGER NOT NULL,
	          start_informed INTEGER NOT NULL DEFAULT 0,
	          end_informed INTEGER NOT NULL DEFAULT 0,
	          at INTEGER NOT NULL
	      );
	      CREATE TABLE IF NOT EXISTS punishments (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          probation_id INTEGER NOT NULL REFERENCES probations(id),
	          incident_id INTEGER NOT NULL REFERENCES incidents(id),
	          until INTEGER NOT NULL,
	          executed INTEGER NOT NULL DEFAULT 0,
	          at INTEGER NOT NULL
	      );
	      CREATE TABLE IF NOT EXISTS guild_configs (
	          guild_sf TEXT NOT NULL PRIMARY KEY,
	          audit_channel_sf TEXT,
	          alert_channel_sf TEXT
	      );
	      CREATE TABLE IF NOT EXISTS message_cache (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_sf TEXT NOT NULL,
	          channel_sf TEXT NOT NULL,
	          message_sf TEXT NOT NULL,
	          author_sf TEXT NOT NULL,
	          content TEXT NOT NULL,
	          at INTEGER NOT NULL
	      );
	      CREATE INDEX IF NOT EXISTS idx_incidents_at ON incidents(at);
	      CREATE INDEX IF NOT EXISTS idx_probations_expiry ON probations(expires_at);
	      CREATE INDEX IF NOT EXISTS idx_message_cache_channel ON message_cache(guild_sf, channel_sf, at);`

	if _, err := database.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return database, nil
}
