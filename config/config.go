package config

import (
	"log"
	"os"
	"strconv"
	"time"
	"warden/model"

	"github.com/joho/godotenv"
)

// Load loads the configuration from environment variables.
func Load() *model.Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Fatal("Error: OPENAI_API_KEY environment variable not set")
	}

	dbPath := os.Getenv("WARDEN_DB_PATH")
	if dbPath == "" {
		dbPath = "data/warden.db"
	}

	triageModel := os.Getenv("TRIAGE_MODEL")
	if triageModel == "" {
		triageModel = "gpt-4o-mini"
	}

	moderationModel := os.Getenv("MODERATION_MODEL")
	if moderationModel == "" {
		moderationModel = "omni-moderation-latest"
	}

	return &model.Config{
		BotToken:  token,
		OpenAIKey: openAIKey,
		DBPath:    dbPath,

		DutyCycleInterval:  envDuration("DUTY_CYCLE_SECONDS", 15, time.Second),
		ProbationDuration:  envDuration("PROBATION_MINUTES", 60, time.Minute),
		PunishmentDuration: envDuration("PUNISHMENT_MINUTES", 60, time.Minute),
		AuditQuietPeriod:   envDuration("AUDIT_QUIET_SECONDS", 10, time.Second),
		PardonLookback:     envDuration("PARDON_LOOKBACK_HOURS", 24, time.Hour),
		StatuteWindow:      envDuration("INCIDENT_MAX_AGE_MINUTES", 15, time.Minute),

		MessageCacheMaxAge:  envDuration("MESSAGE_CACHE_HOURS", 2, time.Hour),
		MessageCacheMaxRows: envInt("MESSAGE_CACHE_MAX_ROWS", 200),

		TriageModel:     triageModel,
		ModerationModel: moderationModel,
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s value %q, using default of %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return n
}

func envDuration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(envInt(key, fallback)) * unit
}
