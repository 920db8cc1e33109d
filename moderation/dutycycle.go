package moderation

import (
	"context"
	"fmt"
	"log"
	"time"
	"warden/db"

	"github.com/bwmarrin/discordgo"
)

// RunCycle is one duty-cycle pass: triage unprocessed incidents, deliver
// probation start/end notices, enforce pending punishments, then reschedule.
// Invocations while a pass is in flight are dropped, never queued. Every
// step's query excludes already-handled rows, so a pass with no new state is
// a no-op.
func (e *Engine) RunCycle() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}

	ctx := context.Background()
	e.processIncidents(ctx)
	e.processProbationStarts()
	e.processProbationEnds()
	e.processPunishments()

	e.running.Store(false)
	e.reschedule()
}

func (e *Engine) reschedule() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.cfg.DutyCycleInterval, e.RunCycle)
}

func (e *Engine) processIncidents(ctx context.Context) {
	incidents, err := db.GetUnprocessedIncidents(e.database, time.Now().Add(-e.cfg.StatuteWindow))
	if err != nil {
		log.Printf("Failed to query unprocessed incidents: %v", err)
		return
	}
	if len(incidents) == 0 {
		log.Println("No incidents to triage.")
		return
	}
	log.Printf("Found %d unprocessed incident(s).", len(incidents))
	for i := range incidents {
		e.TriageIncident(ctx, &incidents[i])
	}
}

func (e *Engine) processProbationStarts() {
	cases, err := db.GetStartUninformedProbations(e.database)
	if err != nil {
		log.Printf("Failed to query start-uninformed probations: %v", err)
		return
	}

	for _, c := range cases {
		if c.Rule == "" {
			log.Printf("No intervention found for probation %d, skipping notification.", c.ID)
			continue
		}
		err := e.platform.DirectMessage(c.OffenderSf, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "You broke a rule!",
				Description: fmt.Sprintf("Your behaviour will now be monitored until <t:%d>.\nYou will be timed out if you break the same rule again.", c.ExpiresAt),
				Color:       0xffff00,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Broken rule:", Value: c.Rule},
					{Name: "You sent:", Value: c.MsgContent},
				},
			}},
		})
		if err != nil {
			// Flag stays false so the next cycle retries.
			log.Printf("Failed to notify offender %s about probation %d: %v", c.OffenderSf, c.ID, err)
			continue
		}
		if err := db.MarkProbationStartInformed(e.database, c.ID); err != nil {
			log.Printf("Failed to mark probation %d start-informed: %v", c.ID, err)
			continue
		}
		log.Printf("Notified offender %s about probation %d.", c.OffenderSf, c.ID)
	}
}

func (e *Engine) processProbationEnds() {
	cases, err := db.GetExpiredUninformedProbations(e.database, time.Now())
	if err != nil {
		log.Printf("Failed to query expired probations: %v", err)
		return
	}

	for _, c := range cases {
		err := e.platform.DirectMessage(c.OffenderSf, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Probation ended",
				Description: "Your probation has ended and you are forgiven. Thank you for keeping things civil.",
				Color:       0x00ff00,
			}},
		})
		if err != nil {
			log.Printf("Failed to notify offender %s about end of probation %d: %v", c.OffenderSf, c.ID, err)
			continue
		}
		if err := db.MarkProbationEndInformed(e.database, c.ID); err != nil {
			log.Printf("Failed to mark probation %d end-informed: %v", c.ID, err)
			continue
		}
		log.Printf("Notified offender %s that probation %d ended.", c.OffenderSf, c.ID)
	}
}

// processPunishments applies pending penalties. The executed flag is set
// after the attempt whether or not enforcement succeeded, so a broken
// permission never causes repeated enforcement attempts.
func (e *Engine) processPunishments() {
	cases, err := db.GetUnexecutedPunishments(e.database)
	if err != nil {
		log.Printf("Failed to query unexecuted punishments: %v", err)
		return
	}

	for _, c := range cases {
		until := time.Unix(c.Until, 0)
		outcome := "timed out"
		if err := e.platform.GuildMemberTimeout(c.GuildSf, c.OffenderSf, &until); err != nil {
			log.Printf("Failed to timeout offender %s for punishment %d: %v", c.OffenderSf, c.ID, err)
			if err := e.platform.GuildBanCreate(c.GuildSf, c.OffenderSf, fmt.Sprintf("Repeat offense; punishment #%d", c.ID)); err != nil {
				log.Printf("Failed to ban offender %s for punishment %d: %v", c.OffenderSf, c.ID, err)
				outcome = "not enforced"
			} else {
				outcome = "banned"
			}
		}
		if err := db.MarkPunishmentExecuted(e.database, c.ID); err != nil {
			log.Printf("Failed to mark punishment %d executed: %v", c.ID, err)
			continue
		}

		incident, err := db.GetIncident(e.database, c.IncidentID)
		if err != nil {
			log.Printf("Failed to load incident %d for punishment audit: %v", c.IncidentID, err)
			continue
		}
		e.audit.Log(incident, fmt.Sprintf("Punishment enforced: offender %s until <t:%d>", outcome, c.Until), "")
	}
}
