// Package triage implements the moderation policy: given an incident's
// captured context, decide whether and how to intervene.
package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"warden/model"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var rules = []string{
	"Respect others: No hate speech, harassment, doxing, or shaming.",
	"Keep it clean: No threatening language, and no adult themes.",
	"No trolling or inciting drama: Keep interactions constructive.",
}

const preamble = `You are a Discord moderator called Warden, able to see the latest messages between Discord users in a channel.
There are both minors and adults in the chat.
We uphold the right to free speech and the right to express yourself, but also the right to not be harassed or bullied.
Joking is allowed, but not if others are evidently uncomfortable.
Disparaging comments about Warden are strictly allowed.`

// Policy drives the two-stage triage conversation with the model.
type Policy struct {
	client *openai.Client
	model  string
}

func New(apiKey, model string) *Policy {
	return &Policy{client: openai.NewClient(apiKey), model: model}
}

type screenResponse struct {
	Thoughts   string `json:"thoughts"`
	FalseAlarm bool   `json:"false_alarm"`
}

type verdictResponse struct {
	Explanation   string `json:"explanation"`
	BrokenRule    string `json:"broken_rule"`
	Victim        string `json:"victim"`
	DeleteMessage bool   `json:"delete_message"`
	Caution       string `json:"caution"`
	Notice        string `json:"notice"`
}

var screenSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"thoughts":    {Type: jsonschema.String},
		"false_alarm": {Type: jsonschema.Boolean},
	},
	Required:             []string{"thoughts", "false_alarm"},
	AdditionalProperties: false,
}

var verdictSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"explanation": {Type: jsonschema.String},
		"broken_rule": {
			Type:        jsonschema.String,
			Description: "the rule broken verbatim, or an empty string if none",
		},
		"victim": {
			Type:        jsonschema.String,
			Description: `the numeric id of the targeted user, or "everybody" when the channel at large is harmed`,
		},
		"delete_message": {
			Type:        jsonschema.Boolean,
			Description: "should the message be deleted immediately?",
		},
		"caution": {
			Type:        jsonschema.String,
			Description: "a private message sent to the offender if punished, e.g. Your message has been removed because [reasons]",
		},
		"notice": {
			Type:        jsonschema.String,
			Description: "one sentence replacing a deleted message in the chat, starting with [offender], e.g. I removed [offender]'s message as it expressed hostility toward others.",
		},
	},
	Required:             []string{"explanation", "broken_rule", "victim", "delete_message", "caution", "notice"},
	AdditionalProperties: false,
}

// Triage screens the incident for a false alarm, then asks for a structured
// verdict with the model playing devil's advocate against the classifier.
func (p *Policy) Triage(ctx context.Context, incident *model.Incident) (model.TriageResult, error) {
	// Repeats the last message so simpler models are less confused.
	transcript := fmt.Sprintf("%s\n\nLatest message by %s:\n%s", incident.Context, incident.OffenderSf, incident.MsgContent)

	var screen screenResponse
	system := fmt.Sprintf(`You're a Discord moderator and an automatic system has flagged the latest message by %s for these reasons: %s.
If there's actually absolutely nothing wrong with the message, please say it's a false alarm.
Be aware of bad spelling due to text speech.`, incident.OffenderSf, incident.Categories)
	if err := p.ask(ctx, "screen", screenSchema, system, transcript, &screen); err != nil {
		return nil, err
	}
	if screen.FalseAlarm {
		return model.Ignore{Reason: "False alarm: " + screen.Thoughts}, nil
	}

	var verdict verdictResponse
	system = fmt.Sprintf(`%s

The Discord server has these rules:
%s

A dumb automatic system has flagged the latest message by %s for these reasons: %s

Play devil's advocate and explain if the latest message by %s, in context, is actually alright.
If a rule really is broken, also determine if the message is directed at a specific user (a victim).`,
		preamble, "- "+strings.Join(rules, "\n- "), incident.OffenderSf, incident.Categories, incident.OffenderSf)
	if err := p.ask(ctx, "verdict", verdictSchema, system, transcript, &verdict); err != nil {
		return nil, err
	}

	return mapVerdict(verdict), nil
}

func mapVerdict(v verdictResponse) model.TriageResult {
	if v.BrokenRule == "" {
		return model.Ignore{Reason: v.Explanation}
	}
	if v.Victim != "" && v.Victim != "everybody" {
		return model.VictimCall{VictimID: v.Victim, Rule: v.BrokenRule}
	}
	return model.GroupCall{
		Rule:    v.BrokenRule,
		Delete:  v.DeleteMessage,
		Caution: v.Caution,
		Notice:  v.Notice,
	}
}

func (p *Policy) ask(ctx context.Context, name string, schema *jsonschema.Definition, system, user string, out interface{}) error {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%s completion failed: %w", name, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no %s response from the model", name)
	}
	message := resp.Choices[0].Message
	if message.Refusal != "" {
		return fmt.Errorf("model refused to answer: %s", message.Refusal)
	}
	if err := json.Unmarshal([]byte(message.Content), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", name, err)
	}
	return nil
}
