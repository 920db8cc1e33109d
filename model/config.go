package model

import "time"

// Config stores the application configuration.
type Config struct {
	BotToken  string
	OpenAIKey string
	DBPath    string

	DutyCycleInterval  time.Duration
	ProbationDuration  time.Duration
	PunishmentDuration time.Duration
	AuditQuietPeriod   time.Duration
	PardonLookback     time.Duration
	StatuteWindow      time.Duration

	MessageCacheMaxAge  time.Duration
	MessageCacheMaxRows int

	TriageModel     string
	ModerationModel string
}
