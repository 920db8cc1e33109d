package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// MemberOutranksBot reports whether the member's highest role sits above the
// bot's own highest role in the guild. Administrative commands require this.
func MemberOutranksBot(s *discordgo.Session, guildID string, member *discordgo.Member) (bool, error) {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch roles for guild %s: %w", guildID, err)
	}
	positions := make(map[string]int, len(roles))
	for _, role := range roles {
		positions[role.ID] = role.Position
	}

	botMember, err := s.GuildMember(guildID, s.State.User.ID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch bot member in guild %s: %w", guildID, err)
	}

	return highestPosition(member.Roles, positions) > highestPosition(botMember.Roles, positions), nil
}

func highestPosition(roleIDs []string, positions map[string]int) int {
	highest := -1
	for _, id := range roleIDs {
		if pos, ok := positions[id]; ok && pos > highest {
			highest = pos
		}
	}
	return highest
}
