package db

import (
	"database/sql"
	"fmt"
	"warden/model"

	"github.com/jmoiron/sqlx"
)

// GetGuildConfig retrieves a guild's audit/alert channel settings, or nil if
// the guild has never been configured.
func GetGuildConfig(db *sqlx.DB, guildSf string) (*model.GuildConfig, error) {
	var cfg model.GuildConfig
	err := db.Get(&cfg, "SELECT * FROM guild_configs WHERE guild_sf = ?", guildSf)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config for %s: %w", guildSf, err)
	}
	return &cfg, nil
}

// SetAuditChannel sets or clears the guild's audit channel. An empty
// channelSf clears it.
func SetAuditChannel(db *sqlx.DB, guildSf, channelSf string) error {
	query := `INSERT INTO guild_configs (guild_sf, audit_channel_sf) VALUES (?, ?)
			  ON CONFLICT(guild_sf) DO UPDATE SET audit_channel_sf = excluded.audit_channel_sf`
	if _, err := db.Exec(query, guildSf, nullable(channelSf)); err != nil {
		return fmt.Errorf("failed to set audit channel for guild %s: %w", guildSf, err)
	}
	return nil
}

// SetAlertChannel sets or clears the guild's alert channel. An empty
// channelSf clears it.
func SetAlertChannel(db *sqlx.DB, guildSf, channelSf string) error {
	query := `INSERT INTO guild_configs (guild_sf, alert_channel_sf) VALUES (?, ?)
			  ON CONFLICT(guild_sf) DO UPDATE SET alert_channel_sf = excluded.alert_channel_sf`
	if _, err := db.Exec(query, guildSf, nullable(channelSf)); err != nil {
		return fmt.Errorf("failed to set alert channel for guild %s: %w", guildSf, err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
