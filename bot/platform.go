package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// sessionPlatform adapts the discordgo session to the narrow Platform
// interface the moderation core and audit logger consume.
type sessionPlatform struct {
	session *discordgo.Session
}

func (p *sessionPlatform) ChannelMessage(channelID, messageID string) (*discordgo.Message, error) {
	return p.session.ChannelMessage(channelID, messageID)
}

func (p *sessionPlatform) ChannelMessageSend(channelID, content string) (*discordgo.Message, error) {
	return p.session.ChannelMessageSend(channelID, content)
}

func (p *sessionPlatform) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return p.session.ChannelMessageSendComplex(channelID, data)
}

func (p *sessionPlatform) ChannelMessageDelete(channelID, messageID string) error {
	return p.session.ChannelMessageDelete(channelID, messageID)
}

func (p *sessionPlatform) MessageReactionAdd(channelID, messageID, emoji string) error {
	return p.session.MessageReactionAdd(channelID, messageID, emoji)
}

func (p *sessionPlatform) MessageReactionRemove(channelID, messageID, emoji, userID string) error {
	return p.session.MessageReactionRemove(channelID, messageID, emoji, userID)
}

func (p *sessionPlatform) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	return p.session.GuildMember(guildID, userID)
}

func (p *sessionPlatform) GuildMemberTimeout(guildID, userID string, until *time.Time) error {
	return p.session.GuildMemberTimeout(guildID, userID, until)
}

func (p *sessionPlatform) GuildBanCreate(guildID, userID, reason string) error {
	return p.session.GuildBanCreateWithReason(guildID, userID, reason, 0)
}

func (p *sessionPlatform) User(userID string) (*discordgo.User, error) {
	return p.session.User(userID)
}

func (p *sessionPlatform) DirectMessage(userID string, data *discordgo.MessageSend) error {
	channel, err := p.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageSendComplex(channel.ID, data)
	return err
}
