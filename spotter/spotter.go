// Package spotter screens incoming messages against the moderation
// classifier before any incident is created.
package spotter

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/unicode/norm"
)

// Spotter calls the moderation endpoint over message text plus at most one
// non-video attachment.
type Spotter struct {
	client *openai.Client
	model  string
}

func New(apiKey, model string) *Spotter {
	return &Spotter{client: openai.NewClient(apiKey), model: model}
}

// Detect returns the comma-joined triggered category names, or flagged=false
// when the message triggers nothing. Self-harm categories are filtered out:
// those need a human, not a disciplinary workflow.
func (s *Spotter) Detect(ctx context.Context, content, attachmentURL, attachmentName string) (string, bool, error) {
	input := norm.NFKD.String(content)
	if attachmentURL != "" && !isVideo(attachmentName) {
		input += "\n[attachment] " + attachmentURL
	}

	resp, err := s.client.Moderations(ctx, openai.ModerationRequest{
		Input: input,
		Model: s.model,
	})
	if err != nil {
		return "", false, fmt.Errorf("moderation request failed: %w", err)
	}
	if len(resp.Results) == 0 {
		log.Println("No results returned from the moderation endpoint")
		return "", false, nil
	}

	categories := triggeredCategories(resp.Results[0].Categories)
	if len(categories) == 0 {
		return "", false, nil
	}
	return strings.Join(categories, ", "), true, nil
}

func isVideo(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".mp4")
}

// triggeredCategories lists the names of the categories the classifier set,
// minus the self-harm group.
func triggeredCategories(c openai.ResultCategories) []string {
	checks := []struct {
		name string
		hit  bool
	}{
		{"hate", c.Hate},
		{"hate/threatening", c.HateThreatening},
		{"harassment", c.Harassment},
		{"harassment/threatening", c.HarassmentThreatening},
		{"sexual", c.Sexual},
		{"sexual/minors", c.SexualMinors},
		{"violence", c.Violence},
		{"violence/graphic", c.ViolenceGraphic},
	}

	var triggered []string
	for _, check := range checks {
		if check.hit {
			triggered = append(triggered, check.name)
		}
	}
	return triggered
}
