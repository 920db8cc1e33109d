package moderation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"warden/db"
	"warden/model"

	"github.com/bwmarrin/discordgo"
)

// TriageIncident advances one unprocessed incident to a triage outcome. Chat
// platform failures are logged and never abort the persisted transition; a
// triage failure leaves the incident unprocessed so a later cycle retries it
// while it is inside the statute window.
func (e *Engine) TriageIncident(ctx context.Context, incident *model.Incident) {
	result, err := e.policy.Triage(ctx, incident)
	if err != nil {
		log.Printf("Triage failed for incident %d: %v", incident.ID, err)
		return
	}

	switch r := result.(type) {
	case model.Ignore:
		e.resolveIgnored(incident, r.Reason)
	case model.VictimCall:
		e.interveneForVictim(incident, r)
	case model.GroupCall:
		e.interveneForGroup(incident, r)
	default:
		log.Printf("Unexpected triage result %T for incident %d", result, incident.ID)
	}
}

func (e *Engine) resolveIgnored(incident *model.Incident, reason string) {
	log.Printf("Ignoring incident %d: %s", incident.ID, reason)
	if err := db.ResolveIncident(e.database, incident.ID, reason); err != nil {
		log.Printf("Failed to resolve incident %d: %v", incident.ID, err)
		return
	}
	e.clearFlag(incident)
	e.audit.Log(incident, "Ignored: "+reason, incident.MsgContent)
}

func (e *Engine) interveneForVictim(incident *model.Incident, call model.VictimCall) {
	if !victimSfPattern.MatchString(call.VictimID) {
		// Policy error: no victim intervention is possible. The incident is
		// left as-is and retries until it ages past the statute window.
		log.Printf("Invalid victim ID format: %q. Expected a numeric sf.", call.VictimID)
		e.audit.Log(incident, fmt.Sprintf("Triage returned a malformed victim id %q; no intervention recorded", call.VictimID), "")
		return
	}

	if call.VictimID == incident.OffenderSf {
		e.resolveIgnored(incident, "Message is self-directed; no rule broken")
		return
	}

	pardoned, err := db.HasRecentPardon(e.database, incident.GuildSf, incident.OffenderSf, call.VictimID, time.Now().Add(-e.cfg.PardonLookback))
	if err != nil {
		log.Printf("Failed to look up pardons for incident %d: %v", incident.ID, err)
		return
	}
	if pardoned {
		log.Printf("Pardon found for offender %s by victim %s; ignoring incident %d.", incident.OffenderSf, call.VictimID, incident.ID)
		e.resolveIgnored(incident, fmt.Sprintf("Pardon found: <@%s> already forgave the offender", call.VictimID))
		return
	}

	handled, err := e.matchRepeatOffense(incident, call.VictimID, call.Rule)
	if err != nil {
		log.Printf("Repeat-offense lookup failed for incident %d: %v", incident.ID, err)
		return
	}
	if handled {
		return
	}

	log.Printf("Intervening in incident %d for victim %s.", incident.ID, call.VictimID)
	resolution := fmt.Sprintf("Intervened in protection of <@%s>", call.VictimID)
	interventionID, err := db.ResolveWithVictimIntervention(e.database, incident.ID, resolution, call.VictimID, call.Rule, time.Now())
	if err != nil {
		log.Printf("Failed to record victim intervention for incident %d: %v", incident.ID, err)
		return
	}
	e.clearFlag(incident)

	victimName := "Unknown"
	if user, err := e.platform.User(call.VictimID); err != nil {
		log.Printf("Failed to resolve victim %s for incident %d: %v", call.VictimID, incident.ID, err)
	} else {
		victimName = user.Username
	}

	e.sendDecisionPrompt(incident, interventionID, call)
	e.audit.Log(incident,
		fmt.Sprintf("Intervened in protection of %s (%s); rule: %s. The victim decides what happens next", victimName, call.VictimID, call.Rule),
		incident.MsgContent)
}

// sendDecisionPrompt posts the forgive/prosecute buttons the victim can act
// on later. Delivery is best-effort; the intervention row is authoritative.
func (e *Engine) sendDecisionPrompt(incident *model.Incident, interventionID int64, call model.VictimCall) {
	suffix := fmt.Sprintf("%d:%d:%s:%s", incident.ID, interventionID, call.VictimID, incident.OffenderSf)
	_, err := e.platform.ChannelMessageSendComplex(incident.ChannelSf, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>, the last message by <@%s> looks like it broke a rule against you:\n> %s\nDo you forgive them, or do you dislike it?",
			call.VictimID, incident.OffenderSf, call.Rule),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Forgive", Style: discordgo.SuccessButton, CustomID: "forgive:" + suffix},
					discordgo.Button{Label: "I dislike it", Style: discordgo.DangerButton, CustomID: "dislike:" + suffix},
				},
			},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{call.VictimID}},
	})
	if err != nil {
		log.Printf("Failed to send decision prompt for incident %d: %v", incident.ID, err)
	}
}

func (e *Engine) interveneForGroup(incident *model.Incident, call model.GroupCall) {
	log.Printf("Intervening in incident %d for group protection.", incident.ID)
	enforcement := e.enforceMessageDecision(incident, call)

	if call.Caution != "" {
		if err := e.platform.DirectMessage(incident.OffenderSf, &discordgo.MessageSend{Content: call.Caution}); err != nil {
			log.Printf("Failed to DM caution to offender %s: %v", incident.OffenderSf, err)
		}
	}

	// Short timeout so the offender notices the DM before continuing.
	until := time.Now().Add(attentionTimeout)
	if err := e.platform.GuildMemberTimeout(incident.GuildSf, incident.OffenderSf, &until); err != nil {
		log.Printf("Failed to timeout offender %s: %v", incident.OffenderSf, err)
	}

	handled, err := e.matchRepeatOffense(incident, "", call.Rule)
	if err != nil {
		log.Printf("Repeat-offense lookup failed for incident %d: %v", incident.ID, err)
		return
	}
	if handled {
		return
	}

	expiresAt := time.Now().Add(e.cfg.ProbationDuration)
	err = db.ResolveWithGroupProtection(e.database, incident.ID,
		"Intervened in protection of the group", call.Rule, call.Delete, expiresAt, time.Now())
	if err != nil {
		log.Printf("Failed to record group protection for incident %d: %v", incident.ID, err)
		return
	}
	e.clearFlag(incident)
	e.audit.LogAlert(incident,
		fmt.Sprintf("Intervened in protection of the group; rule: %s. Offending message %s. On probation until <t:%d>",
			call.Rule, enforcement, expiresAt.Unix()),
		incident.MsgContent, incident.OffenderSf)
}

// enforceMessageDecision applies the delete/notify decision to the offending
// message and reports what actually happened for the audit trail.
func (e *Engine) enforceMessageDecision(incident *model.Incident, call model.GroupCall) string {
	msg, err := e.platform.ChannelMessage(incident.ChannelSf, incident.MessageSf)
	if err != nil || msg == nil {
		log.Printf("Message %s in channel %s not found: %v", incident.MessageSf, incident.ChannelSf, err)
		return "not found"
	}

	if call.Delete {
		if err := e.platform.ChannelMessageDelete(incident.ChannelSf, incident.MessageSf); err != nil {
			log.Printf("Failed to delete message %s: %v", incident.MessageSf, err)
			return "could not be deleted"
		}
		if call.Notice != "" {
			notice := strings.ReplaceAll(call.Notice, "[offender]", fmt.Sprintf("<@%s>", incident.OffenderSf))
			if _, err := e.platform.ChannelMessageSend(incident.ChannelSf, notice); err != nil {
				log.Printf("Failed to post replacement notice for incident %d: %v", incident.ID, err)
			}
		}
		return "deleted"
	}

	reply := fmt.Sprintf("I'd like everybody to know this message breaks a rule: %s.", call.Rule)
	_, err = e.platform.ChannelMessageSendComplex(incident.ChannelSf, &discordgo.MessageSend{
		Content: reply,
		Reference: &discordgo.MessageReference{
			GuildID:   incident.GuildSf,
			ChannelID: incident.ChannelSf,
			MessageID: incident.MessageSf,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	})
	if err != nil {
		log.Printf("Failed to reply to message %s: %v", incident.MessageSf, err)
		return "could not be replied to"
	}
	return "replied to"
}
