package moderation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"warden/audit"
	"warden/db"
	"warden/model"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	channelSf string
	content   string
	data      *discordgo.MessageSend
}

type timeoutCall struct {
	guildSf    string
	offenderSf string
	until      time.Time
}

// fakePlatform records every platform call and serves canned failures.
type fakePlatform struct {
	mu               sync.Mutex
	messages         []sentMessage
	dms              map[string][]*discordgo.MessageSend
	deleted          []string
	timeouts         []timeoutCall
	bans             []string
	reactionsRemoved int

	fetchErr   error
	dmErr      error
	timeoutErr error
	banErr     error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{dms: map[string][]*discordgo.MessageSend{}}
}

func (p *fakePlatform) ChannelMessage(channelID, messageID string) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (p *fakePlatform) ChannelMessageSend(channelID, content string) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, sentMessage{channelSf: channelID, content: content})
	return &discordgo.Message{}, nil
}

func (p *fakePlatform) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, sentMessage{channelSf: channelID, content: data.Content, data: data})
	return &discordgo.Message{}, nil
}

func (p *fakePlatform) ChannelMessageDelete(channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, messageID)
	return nil
}

func (p *fakePlatform) MessageReactionAdd(channelID, messageID, emoji string) error { return nil }

func (p *fakePlatform) MessageReactionRemove(channelID, messageID, emoji, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactionsRemoved++
	return nil
}

func (p *fakePlatform) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func (p *fakePlatform) GuildMemberTimeout(guildID, userID string, until *time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timeoutErr != nil {
		return p.timeoutErr
	}
	p.timeouts = append(p.timeouts, timeoutCall{guildSf: guildID, offenderSf: userID, until: *until})
	return nil
}

func (p *fakePlatform) GuildBanCreate(guildID, userID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.banErr != nil {
		return p.banErr
	}
	p.bans = append(p.bans, userID)
	return nil
}

func (p *fakePlatform) User(userID string) (*discordgo.User, error) {
	return &discordgo.User{ID: userID, Username: "user-" + userID}, nil
}

func (p *fakePlatform) DirectMessage(userID string, data *discordgo.MessageSend) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dmErr != nil {
		return p.dmErr
	}
	p.dms[userID] = append(p.dms[userID], data)
	return nil
}

func (p *fakePlatform) dmCount(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dms[userID])
}

func (p *fakePlatform) sentTo(channelSf string) []sentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []sentMessage
	for _, m := range p.messages {
		if m.channelSf == channelSf {
			out = append(out, m)
		}
	}
	return out
}

// policyFunc adapts a function into a TriagePolicy.
type policyFunc func(*model.Incident) (model.TriageResult, error)

func (f policyFunc) Triage(_ context.Context, incident *model.Incident) (model.TriageResult, error) {
	return f(incident)
}

func fixedPolicy(result model.TriageResult) policyFunc {
	return func(*model.Incident) (model.TriageResult, error) { return result, nil }
}

func newTestEngine(t *testing.T, policy model.TriagePolicy) (*Engine, *sqlx.DB, *fakePlatform) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	database, err := db.Init(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	platform := newFakePlatform()
	// Quiet period long enough that audit buffers never flush mid-test.
	auditLog := audit.New(database, platform, time.Hour, 0)
	cfg := &model.Config{
		DutyCycleInterval:  time.Hour,
		ProbationDuration:  time.Hour,
		PunishmentDuration: time.Hour,
		AuditQuietPeriod:   time.Hour,
		PardonLookback:     24 * time.Hour,
		StatuteWindow:      15 * time.Minute,
	}
	engine := New(database, platform, policy, auditLog, cfg)
	t.Cleanup(engine.Stop)
	return engine, database, platform
}

func seedIncident(t *testing.T, database *sqlx.DB, guildSf, offenderSf string, at time.Time) *model.Incident {
	t.Helper()
	incident := &model.Incident{
		GuildSf:    guildSf,
		ChannelSf:  "200",
		MessageSf:  "300",
		OffenderSf: offenderSf,
		MsgContent: "you are terrible",
		Context:    offenderSf + ": you are terrible",
		Categories: "harassment",
		At:         at.Unix(),
	}
	id, err := db.CreateIncident(database, incident)
	require.NoError(t, err)
	incident.ID = id
	return incident
}

func buttonCustomIDs(t *testing.T, m sentMessage) []string {
	t.Helper()
	require.NotEmpty(t, m.data.Components)
	row, ok := m.data.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	var ids []string
	for _, c := range row.Components {
		button, ok := c.(discordgo.Button)
		require.True(t, ok)
		ids = append(ids, button.CustomID)
	}
	return ids
}

func reloadIncident(t *testing.T, database *sqlx.DB, id int64) *model.Incident {
	t.Helper()
	incident, err := db.GetIncident(database, id)
	require.NoError(t, err)
	return incident
}
