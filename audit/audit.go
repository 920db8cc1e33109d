// Package audit batches human-readable log lines per incident and flushes
// them to the guild's configured audit channel after a quiet period.
package audit

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"
	"warden/db"
	"warden/model"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

const chunkSize = 1500

// sfPattern matches bare snowflakes so flushes can rewrite them as mentions.
var sfPattern = regexp.MustCompile(`(^|\s|\()(\d{9,})\b`)

type buffer struct {
	incident   model.Incident
	text       string
	timer      *time.Timer
	seq        int // invalidates a fired timer that lost the race to a rearm
	alertForSf string
}

// Logger owns the in-memory per-incident buffers. All access goes through
// its methods; no other component reaches into the buffer set.
type Logger struct {
	mu       sync.Mutex
	buffers  map[int64]*buffer
	database *sqlx.DB
	platform model.Platform

	quiet      time.Duration
	chunkDelay time.Duration
}

// New creates a Logger flushing after the given quiet period and sleeping
// chunkDelay between chunks of one flush.
func New(database *sqlx.DB, platform model.Platform, quiet, chunkDelay time.Duration) *Logger {
	return &Logger{
		buffers:    make(map[int64]*buffer),
		database:   database,
		platform:   platform,
		quiet:      quiet,
		chunkDelay: chunkDelay,
	}
}

// Log appends a line to the incident's pending buffer and restarts its
// quiet-period timer. The optional quote is indented as a block quote.
func (l *Logger) Log(incident *model.Incident, text, quote string) {
	l.log(incident, text, quote, "")
}

// LogAlert is Log plus a request to ping the guild's alert channel about the
// given user once the buffer flushes.
func (l *Logger) LogAlert(incident *model.Incident, text, quote, alertForSf string) {
	l.log(incident, text, quote, alertForSf)
}

func (l *Logger) log(incident *model.Incident, text, quote, alertForSf string) {
	if quote != "" {
		quoted := make([]string, 0, 4)
		for _, line := range strings.Split(strings.TrimSpace(quote), "\n") {
			quoted = append(quoted, "> "+line)
		}
		text += "\n" + strings.Join(quoted, "\n")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.buffers[incident.ID]; ok {
		existing.timer.Stop()
		existing.seq++
		seq := existing.seq
		existing.timer = time.AfterFunc(l.quiet, func() { l.flushExpired(incident.ID, seq) })
		existing.text += "\n" + text
		if existing.alertForSf == "" {
			existing.alertForSf = alertForSf
		}
		return
	}

	b := &buffer{incident: *incident, text: text, alertForSf: alertForSf}
	b.timer = time.AfterFunc(l.quiet, func() { l.flushExpired(incident.ID, 0) })
	l.buffers[incident.ID] = b
}

// flushExpired flushes on timer expiry, unless a later log call already
// rearmed the timer for this incident.
func (l *Logger) flushExpired(incidentID int64, seq int) {
	l.mu.Lock()
	b, ok := l.buffers[incidentID]
	if !ok || b.seq != seq {
		l.mu.Unlock()
		return
	}
	delete(l.buffers, incidentID)
	l.mu.Unlock()

	if err := l.deliver(b); err != nil {
		log.Printf("Failed to flush audit log for incident %d: %v", incidentID, err)
	}
}

// Flush forces the incident's buffer out immediately. It is a no-op when no
// buffer is pending.
func (l *Logger) Flush(incidentID int64) error {
	l.mu.Lock()
	b, ok := l.buffers[incidentID]
	if ok {
		b.timer.Stop()
		delete(l.buffers, incidentID)
	}
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return l.deliver(b)
}

// Pending reports how many incident buffers are waiting to flush.
func (l *Logger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buffers)
}

func (l *Logger) deliver(b *buffer) error {
	cfg, err := db.GetGuildConfig(l.database, b.incident.GuildSf)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.AuditChannelSf.Valid {
		return nil // no audit channel configured; buffer already discarded
	}

	withMentions := sfPattern.ReplaceAllString(b.text, "$1<@$2>")
	chunks := splitChunks(withMentions, chunkSize)

	var firstMessage *discordgo.Message
	for c, chunk := range chunks {
		header := fmt.Sprintf("__Incident #%d__", b.incident.ID)
		if c > 0 {
			header += fmt.Sprintf(" (%d/%d)", c+1, len(chunks))
		}
		msg, err := l.platform.ChannelMessageSendComplex(cfg.AuditChannelSf.String, &discordgo.MessageSend{
			Content:         header + "\n" + chunk,
			AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
		})
		if err != nil {
			return fmt.Errorf("failed to send audit chunk %d/%d for incident %d: %w", c+1, len(chunks), b.incident.ID, err)
		}
		if firstMessage == nil {
			firstMessage = msg
		}
		if c < len(chunks)-1 {
			time.Sleep(l.chunkDelay)
		}
	}

	if b.alertForSf != "" && firstMessage != nil && cfg.AlertChannelSf.Valid {
		link := fmt.Sprintf("https://discord.com/channels/%s/%s/%s",
			b.incident.GuildSf, cfg.AuditChannelSf.String, firstMessage.ID)
		_, err := l.platform.ChannelMessageSendComplex(cfg.AlertChannelSf.String, &discordgo.MessageSend{
			Content:         fmt.Sprintf(":warning: <@%s> probation %s", b.alertForSf, link),
			AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
		})
		if err != nil {
			log.Printf("Failed to send alert for incident %d: %v", b.incident.ID, err)
		}
	}
	return nil
}

func splitChunks(s string, size int) []string {
	runes := []rune(s)
	var chunks []string
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	return append(chunks, string(runes))
}
