package model

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Platform is the narrow slice of the chat platform the moderation core
// uses. discordgo's concrete methods take variadic request options, so the
// bot wraps the session behind this interface; tests substitute a fake.
// Every call is fallible and callers catch failures individually.
type Platform interface {
	ChannelMessage(channelID, messageID string) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string) error
	MessageReactionAdd(channelID, messageID, emoji string) error
	MessageReactionRemove(channelID, messageID, emoji, userID string) error
	GuildMember(guildID, userID string) (*discordgo.Member, error)
	GuildMemberTimeout(guildID, userID string, until *time.Time) error
	GuildBanCreate(guildID, userID, reason string) error
	User(userID string) (*discordgo.User, error)
	DirectMessage(userID string, data *discordgo.MessageSend) error
}

// TriagePolicy decides whether an incident is actionable. The result is one
// of the TriageResult variants below.
type TriagePolicy interface {
	Triage(ctx context.Context, incident *Incident) (TriageResult, error)
}

// Classifier screens a message for moderation categories. It returns the
// comma-joined triggered category names, or flagged=false when clean.
type Classifier interface {
	Detect(ctx context.Context, content, attachmentURL, attachmentName string) (categories string, flagged bool, err error)
}

// TriageResult is a tagged variant: exactly one of Ignore, VictimCall or
// GroupCall.
type TriageResult interface {
	triageResult()
}

// Ignore means no rule was broken; Reason is free text for the audit trail.
type Ignore struct {
	Reason string
}

// VictimCall means the message targets a specific user.
type VictimCall struct {
	VictimID string // raw policy output, validated by the state machine
	Rule     string
}

// GroupCall means the message harms the community at large.
type GroupCall struct {
	Rule    string
	Delete  bool   // delete the offending message immediately
	Caution string // optional private note DMed to the offender
	Notice  string // optional public replacement, "[offender]" placeholder
}

func (Ignore) triageResult()     {}
func (VictimCall) triageResult() {}
func (GroupCall) triageResult()  {}
