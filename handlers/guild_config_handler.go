package handlers

import (
	"log"
	"warden/bot"
	"warden/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// HandleChannelToggle points the guild's audit or alert output at the
// invoking channel, or turns it off. Only members who outrank the bot's own
// highest role may change it.
func HandleChannelToggle(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot,
	set func(db *sqlx.DB, guildSf, channelSf string) error, label string) {
	if i.Member == nil || i.GuildID == "" {
		utils.SendErrorResponse(s, i, "This command only works inside a guild.")
		return
	}

	outranks, err := utils.MemberOutranksBot(s, i.GuildID, i.Member)
	if err != nil {
		log.Printf("Failed to check rank for %s in guild %s: %v", i.Member.User.ID, i.GuildID, err)
		utils.SendErrorResponse(s, i, "Could not verify your rank, try again later.")
		return
	}
	if !outranks {
		utils.SendErrorResponse(s, i, "You need to outrank me to change this.")
		return
	}

	action := i.ApplicationCommandData().Options[0].StringValue()
	channelSf := ""
	if action == "here" {
		channelSf = i.ChannelID
	}

	if err := set(b.DB, i.GuildID, channelSf); err != nil {
		log.Printf("Failed to update %s channel for guild %s: %v", label, i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to save the setting.")
		return
	}

	if channelSf == "" {
		utils.SendSimpleResponse(s, i, label+" output is now off.")
	} else {
		utils.SendSimpleResponse(s, i, label+" output will now go to this channel.")
	}
}
