package handlers

import (
	"context"
	"log"
	"strings"
	"time"
	"warden/bot"
	"warden/db"
	"warden/model"

	"github.com/bwmarrin/discordgo"
)

const contextMessages = 10

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"audit-channel": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleChannelToggle(s, i, b, db.SetAuditChannel, "Audit")
		},
		"alert-channel": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleChannelToggle(s, i, b, db.SetAlertChannel, "Alert")
		},
		"system-info": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessageCreate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			customID := i.MessageComponentData().CustomID
			if strings.HasPrefix(customID, "forgive:") || strings.HasPrefix(customID, "dislike:") {
				HandleVictimDecision(s, i, b)
			}
		}
	})
}

// HandleMessageCreate caches the message, screens it through the classifier
// and, when flagged, records an incident and kicks the duty cycle.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	cfg := b.GetConfig()

	err := db.InsertCachedMessage(b.DB, &model.CachedMessage{
		GuildSf:   m.GuildID,
		ChannelSf: m.ChannelID,
		MessageSf: m.ID,
		AuthorSf:  m.Author.ID,
		Content:   m.Content,
		At:        time.Now().Unix(),
	}, cfg.MessageCacheMaxAge, cfg.MessageCacheMaxRows)
	if err != nil {
		log.Printf("Failed to cache message %s: %v", m.ID, err)
	}

	var attachmentURL, attachmentName string
	if len(m.Attachments) > 0 {
		attachmentURL = m.Attachments[0].URL
		attachmentName = m.Attachments[0].Filename
	}

	categories, flagged, err := b.Spotter.Detect(context.Background(), m.Content, attachmentURL, attachmentName)
	if err != nil {
		log.Printf("Classifier failed for message %s: %v", m.ID, err)
		return
	}
	if !flagged {
		return
	}

	if err := s.MessageReactionAdd(m.ChannelID, m.ID, "🚨"); err != nil {
		log.Printf("Failed to flag message %s: %v", m.ID, err)
	}

	chatContext, err := db.RecentContext(b.DB, m.GuildID, m.ChannelID, contextMessages+1)
	if err != nil {
		log.Printf("Failed to build context for message %s: %v", m.ID, err)
		chatContext = m.Author.ID + ": " + m.Content
	}

	incidentID, err := db.CreateIncident(b.DB, &model.Incident{
		GuildSf:    m.GuildID,
		ChannelSf:  m.ChannelID,
		MessageSf:  m.ID,
		OffenderSf: m.Author.ID,
		MsgContent: clipContent(m.Content, m.Attachments),
		Context:    chatContext,
		Categories: categories,
		At:         time.Now().Unix(),
	})
	if err != nil {
		log.Printf("Failed to create incident for message %s: %v", m.ID, err)
		return
	}

	log.Printf("Message %s: %s: incident %d", m.ID, categories, incidentID)
	b.Engine.Kick()
}

// clipContent bounds the captured message text and appends attachment URLs.
func clipContent(content string, attachments []*discordgo.MessageAttachment) string {
	clipped := content
	if len(clipped) > 1000 {
		clipped = clipped[:1000] + "..."
	}
	urls := make([]string, 0, len(attachments))
	for _, a := range attachments {
		urls = append(urls, a.URL)
	}
	if len(urls) > 0 {
		clipped += " " + strings.Join(urls, " ")
	}
	return clipped
}
