package db

import (
	"fmt"
	"strings"
	"time"
	"warden/model"

	"github.com/jmoiron/sqlx"
)

// InsertCachedMessage appends a message to the rolling per-channel window and
// prunes the window by age and by row count in the same call.
func InsertCachedMessage(db *sqlx.DB, msg *model.CachedMessage, maxAge time.Duration, maxRows int) error {
	query := `INSERT INTO message_cache (guild_sf, channel_sf, message_sf, author_sf, content, at)
			  VALUES (:guild_sf, :channel_sf, :message_sf, :author_sf, :content, :at)`
	if _, err := db.NamedExec(query, msg); err != nil {
		return fmt.Errorf("failed to insert cached message: %w", err)
	}

	cutoff := time.Unix(msg.At, 0).Add(-maxAge).Unix()
	if _, err := db.Exec("DELETE FROM message_cache WHERE at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to prune message cache by age: %w", err)
	}

	prune := `DELETE FROM message_cache
			  WHERE guild_sf = ? AND channel_sf = ?
			  AND id NOT IN (
			      SELECT id FROM message_cache
			      WHERE guild_sf = ? AND channel_sf = ?
			      ORDER BY id DESC LIMIT ?)`
	if _, err := db.Exec(prune, msg.GuildSf, msg.ChannelSf, msg.GuildSf, msg.ChannelSf, maxRows); err != nil {
		return fmt.Errorf("failed to prune message cache by count: %w", err)
	}
	return nil
}

// RecentContext reconstructs the last limit messages of a channel as
// "authorSf: content" lines, oldest first.
func RecentContext(db *sqlx.DB, guildSf, channelSf string, limit int) (string, error) {
	var messages []model.CachedMessage
	query := `SELECT * FROM (
			      SELECT * FROM message_cache
			      WHERE guild_sf = ? AND channel_sf = ?
			      ORDER BY id DESC LIMIT ?
			  ) ORDER BY id`
	if err := db.Select(&messages, query, guildSf, channelSf, limit); err != nil {
		return "", fmt.Errorf("failed to read message cache for channel %s: %w", channelSf, err)
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.AuthorSf+": "+m.Content)
	}
	return strings.Join(lines, "\n"), nil
}
