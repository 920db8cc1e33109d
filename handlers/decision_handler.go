package handlers

import (
	"log"
	"strconv"
	"strings"
	"time"
	"warden/bot"
	"warden/db"
	"warden/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleVictimDecision resolves the forgive/dislike buttons on a victim
// intervention prompt. Only the named victim may press them; either press
// removes the prompt and records a Pardon or a Probation.
func HandleVictimDecision(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) != 5 {
		log.Printf("Malformed decision CustomID: %q", i.MessageComponentData().CustomID)
		return
	}
	action := parts[0]
	incidentID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		log.Printf("Malformed incident id in decision CustomID: %q", parts[1])
		return
	}
	interventionID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		log.Printf("Malformed intervention id in decision CustomID: %q", parts[2])
		return
	}
	victimSf, offenderSf := parts[3], parts[4]

	if i.Member == nil || i.Member.User.ID != victimSf {
		utils.SendErrorResponse(s, i, "Only the person this concerns can decide.")
		return
	}

	incident, err := db.GetIncident(b.DB, incidentID)
	if err != nil {
		log.Printf("Failed to load incident %d for decision: %v", incidentID, err)
		utils.SendErrorResponse(s, i, "Something went wrong, try again later.")
		return
	}

	if err := s.ChannelMessageDelete(i.ChannelID, i.Message.ID); err != nil {
		log.Printf("Failed to delete decision prompt for incident %d: %v", incidentID, err)
	}

	switch action {
	case "forgive":
		if _, err := db.CreatePardon(b.DB, incidentID, interventionID, time.Now()); err != nil {
			log.Printf("Failed to record pardon for incident %d: %v", incidentID, err)
			utils.SendErrorResponse(s, i, "Failed to record your decision.")
			return
		}
		b.Audit.Log(incident, "The victim forgave the offender; future incidents against them are pardoned for a while", "")
		utils.SendSimpleResponse(s, i, "Thank you. "+mention(offenderSf)+" is forgiven.")
	case "dislike":
		expiresAt := time.Now().Add(b.GetConfig().ProbationDuration)
		if _, err := db.CreateProbation(b.DB, incidentID, expiresAt, time.Now()); err != nil {
			log.Printf("Failed to record probation for incident %d: %v", incidentID, err)
			utils.SendErrorResponse(s, i, "Failed to record your decision.")
			return
		}
		b.Audit.LogAlert(incident, "The victim disliked it; the offender is now on probation", "", offenderSf)
		utils.SendSimpleResponse(s, i, "Understood. "+mention(offenderSf)+" is now on probation.")
	}
}

func mention(sf string) string {
	return "<@" + sf + ">"
}
