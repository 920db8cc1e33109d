package commands

import "github.com/bwmarrin/discordgo"

// Commands returns the global application commands.
func Commands() []*discordgo.ApplicationCommand {
	channelToggle := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "Use this channel, or turn the output off",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "here", Value: "here"},
				{Name: "off", Value: "off"},
			},
		},
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "audit-channel",
			Description: "Send incident audit logs to this channel, or turn them off.",
			Options:     channelToggle,
		},
		{
			Name:        "alert-channel",
			Description: "Send probation alerts to this channel, or turn them off.",
			Options:     channelToggle,
		},
		{
			Name:        "system-info",
			Description: "Show the bot's system status.",
		},
	}
}
