package model

import "database/sql"

// Incident represents a single flagged message event and its processing
// record. Snowflakes are stored as TEXT; timestamps are unix seconds.
type Incident struct {
	ID         int64          `db:"id"` // Primary Key, Auto-increment
	GuildSf    string         `db:"guild_sf"`
	ChannelSf  string         `db:"channel_sf"`
	MessageSf  string         `db:"message_sf"`
	OffenderSf string         `db:"offender_sf"`
	MsgContent string         `db:"msg_content"`
	Context    string         `db:"context"`
	Categories string         `db:"categories"`
	At         int64          `db:"at"`
	Resolution sql.NullString `db:"resolution"` // NULL until the incident reaches a terminal outcome
}

// VictimIntervention records an action taken in protection of a specific
// named target of the offending message.
type VictimIntervention struct {
	ID         int64  `db:"id"`
	IncidentID int64  `db:"incident_id"`
	VictimSf   string `db:"victim_sf"`
	Rule       string `db:"rule"`
	At         int64  `db:"at"`
}

// GroupIntervention records an action taken in protection of the channel at
// large rather than a specific target.
type GroupIntervention struct {
	ID         int64  `db:"id"`
	IncidentID int64  `db:"incident_id"`
	Rule       string `db:"rule"`
	MsgDeleted bool   `db:"msg_deleted"`
	At         int64  `db:"at"`
}

// Pardon links an incident and its victim intervention to the victim's
// decision to forgive the offender.
type Pardon struct {
	ID             int64 `db:"id"`
	IncidentID     int64 `db:"incident_id"`
	InterventionID int64 `db:"intervention_id"`
	At             int64 `db:"at"`
}

// Probation is a bounded window during which a repeat offense by the same
// offender escalates automatically. The two informed flags are one-shot.
type Probation struct {
	ID            int64 `db:"id"`
	IncidentID    int64 `db:"incident_id"`
	ExpiresAt     int64 `db:"expires_at"`
	StartInformed bool  `db:"start_informed"`
	EndInformed   bool  `db:"end_informed"`
	At            int64 `db:"at"`
}

// Punishment is an enforced penalty triggered by a repeat offense during
// probation. The executed flag gates real-world enforcement to at most once.
type Punishment struct {
	ID          int64 `db:"id"`
	ProbationID int64 `db:"probation_id"`
	IncidentID  int64 `db:"incident_id"` // the second incident that triggered it
	Until       int64 `db:"until"`
	Executed    bool  `db:"executed"`
	At          int64 `db:"at"`
}

// ProbationCase is a probation joined with its originating incident and the
// rule from that incident's intervention, as pulled by the duty cycle.
type ProbationCase struct {
	Probation
	GuildSf    string `db:"guild_sf"`
	OffenderSf string `db:"offender_sf"`
	MsgContent string `db:"msg_content"`
	Rule       string `db:"rule"`
}

// PunishmentCase is a punishment joined with the incident that triggered it.
type PunishmentCase struct {
	Punishment
	GuildSf    string `db:"guild_sf"`
	OffenderSf string `db:"offender_sf"`
}

// GuildConfig holds the per-guild audit/alert channel settings. Absence of a
// channel means no audit/alert output for that guild.
type GuildConfig struct {
	GuildSf        string         `db:"guild_sf"`
	AuditChannelSf sql.NullString `db:"audit_channel_sf"`
	AlertChannelSf sql.NullString `db:"alert_channel_sf"`
}

// CachedMessage is one row of the rolling per-channel message window used to
// reconstruct conversation context for the classifier.
type CachedMessage struct {
	ID        int64  `db:"id"`
	GuildSf   string `db:"guild_sf"`
	ChannelSf string `db:"channel_sf"`
	MessageSf string `db:"message_sf"`
	AuthorSf  string `db:"author_sf"`
	Content   string `db:"content"`
	At        int64  `db:"at"`
}
