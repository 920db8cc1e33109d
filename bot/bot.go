package bot

import (
	"log"
	"sync/atomic"
	"time"
	"warden/audit"
	"warden/model"
	"warden/moderation"
	"warden/spotter"
	"warden/triage"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// interChunkDelay paces audit flushes under the platform's rate limits.
const interChunkDelay = time.Second

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Audit              *audit.Logger
	Engine             *moderation.Engine
	Spotter            model.Classifier
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	config atomic.Value // *model.Config
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, database *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages | discordgo.IntentGuildModeration | discordgo.IntentMessageContent
	dg.StateEnabled = false

	b := &Bot{
		Session: dg,
		DB:      database,
		Spotter: spotter.New(cfg.OpenAIKey, cfg.ModerationModel),
	}
	b.config.Store(cfg)

	platform := &sessionPlatform{session: dg}
	b.Audit = audit.New(database, platform, cfg.AuditQuietPeriod, interChunkDelay)
	policy := triage.New(cfg.OpenAIKey, cfg.TriageModel)
	b.Engine = moderation.New(database, platform, policy, b.Audit, cfg)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Engine.Stop()
	b.Session.Close()
	b.DB.Close()
}
