// Package moderation owns the incident lifecycle: triage of flagged
// messages, probation and punishment windows, and the duty cycle that
// advances them.
package moderation

import (
	"log"
	"regexp"
	"sync"
	"sync/atomic"
	"time"
	"warden/audit"
	"warden/model"

	"github.com/jmoiron/sqlx"
)

// attentionTimeout is the short nudge applied so the offender notices the DM.
const attentionTimeout = time.Minute

var victimSfPattern = regexp.MustCompile(`^[0-9]+$`)

// Engine drives the incident lifecycle state machine and its duty cycle.
type Engine struct {
	database *sqlx.DB
	platform model.Platform
	policy   model.TriagePolicy
	audit    *audit.Logger
	cfg      *model.Config

	running atomic.Bool // duty-cycle overlap guard

	mu      sync.Mutex
	timer   *time.Timer // reschedule handle
	stopped bool
}

// New creates an Engine. Start must be called to arm the duty cycle.
func New(database *sqlx.DB, platform model.Platform, policy model.TriagePolicy, auditLog *audit.Logger, cfg *model.Config) *Engine {
	return &Engine{
		database: database,
		platform: platform,
		policy:   policy,
		audit:    auditLog,
		cfg:      cfg,
	}
}

// Start runs the first duty cycle in the background; each cycle reschedules
// the next one.
func (e *Engine) Start() {
	go e.RunCycle()
}

// Stop cancels the pending reschedule. A cycle already in flight finishes on
// its own.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	if e.timer != nil {
		e.timer.Stop()
	}
}

// Kick triggers an eager duty cycle, used right after a new incident is
// created. If a cycle is already running the kick is dropped.
func (e *Engine) Kick() {
	go e.RunCycle()
}

// clearFlag removes the flagged-message marker. The marker is cosmetic, so
// failures are swallowed.
func (e *Engine) clearFlag(incident *model.Incident) {
	if err := e.platform.MessageReactionRemove(incident.ChannelSf, incident.MessageSf, "🚨", "@me"); err != nil {
		log.Printf("Failed to remove flag reaction for incident %d: %v", incident.ID, err)
	}
}
