package moderation

import (
	"fmt"
	"log"
	"time"
	"warden/db"
	"warden/model"

	"github.com/bwmarrin/discordgo"
)

// matchRepeatOffense converts the incident into a punishment when the same
// offender already has an unexpired probation in this guild. With a victim
// scope the probation must originate from an incident against the same
// victim. Returns true when the incident was handled here.
func (e *Engine) matchRepeatOffense(incident *model.Incident, victimSf, rule string) (bool, error) {
	probation, err := db.FindActiveProbation(e.database, incident.GuildSf, incident.OffenderSf, victimSf, time.Now())
	if err != nil {
		return false, err
	}
	if probation == nil {
		return false, nil
	}

	until := time.Now().Add(e.cfg.PunishmentDuration)
	if _, err := db.CreatePunishment(e.database, probation.ID, incident.ID, until, time.Now()); err != nil {
		return false, err
	}
	resolution := fmt.Sprintf("Repeat offense during probation from incident #%d", probation.IncidentID)
	if err := db.ResolveIncident(e.database, incident.ID, resolution); err != nil {
		return false, err
	}

	log.Printf("Incident %d is a repeat offense on probation %d (incident #%d); punishing until %v.",
		incident.ID, probation.ID, probation.IncidentID, until)
	e.clearFlag(incident)
	e.audit.LogAlert(incident,
		fmt.Sprintf("Repeat offense during probation from incident #%d; rule: %s. Punished until <t:%d>",
			probation.IncidentID, rule, until.Unix()),
		incident.MsgContent, incident.OffenderSf)

	err = e.platform.DirectMessage(incident.OffenderSf, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "You broke a rule again!",
			Description: fmt.Sprintf("You were on probation and will now be timed out until <t:%d>.", until.Unix()),
			Color:       0xff0000,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Broken rule:", Value: rule},
				{Name: "You sent:", Value: incident.MsgContent},
			},
		}},
	})
	if err != nil {
		log.Printf("Failed to notify offender %s about punishment: %v", incident.OffenderSf, err)
	}
	return true, nil
}
