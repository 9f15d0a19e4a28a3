package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Decision is the synthesizer's verdict on a query: either a DirectAnswer
// or a ResearchRequested. Match it with a type switch.
type Decision interface {
	isDecision()
}

// DirectAnswer means the model answered without needing research.
type DirectAnswer struct {
	Text string
}

// ResearchRequested means the model wants a multi-angle search first.
type ResearchRequested struct {
	Query string
	Hint  TopicHint
}

func (DirectAnswer) isDecision()      {}
func (ResearchRequested) isDecision() {}

// Synthesizer plans a query and writes the final report from findings.
type Synthesizer interface {
	Plan(ctx context.Context, query string, hint TopicHint) (Decision, error)
	Report(ctx context.Context, query string, findings Findings) (string, error)
}

// currentDate returns today's date in ISO 8601 format (UTC).
func currentDate() string {
	return time.Now().UTC().Format("2006-01-02")
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// completeFunc sends one system+user prompt pair and returns the reply.
type completeFunc func(ctx context.Context, system, prompt string) (string, error)

// ChatSynthesizer drives an OpenAI-compatible chat model. Without native
// function calling it asks for a JSON plan instead.
type ChatSynthesizer struct {
	complete    completeFunc
	maxFindings int
}

// NewChatSynthesizer wraps a go-kit LLM client.
func NewChatSynthesizer(client *llm.Client, cfg *Config) *ChatSynthesizer {
	return &ChatSynthesizer{
		complete: func(ctx context.Context, system, prompt string) (string, error) {
			return client.Complete(ctx, system, prompt)
		},
		maxFindings: cfg.MaxFindings,
	}
}

func (s *ChatSynthesizer) call(ctx context.Context, system, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	raw, err := s.complete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(raw), nil
}

// Plan implements Synthesizer.
func (s *ChatSynthesizer) Plan(ctx context.Context, query string, hint TopicHint) (Decision, error) {
	raw, err := s.call(ctx, researchSystem, fmt.Sprintf(planPrompt, currentDate(), hint, query))
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return parsePlan(raw, query, hint), nil
}

// Report implements Synthesizer.
func (s *ChatSynthesizer) Report(ctx context.Context, query string, findings Findings) (string, error) {
	raw, err := s.call(ctx, researchSystem, fmt.Sprintf(reportPrompt, currentDate(), query, FormatFindings(findings, s.maxFindings)))
	if err != nil {
		return "", fmt.Errorf("report: %w", err)
	}
	return raw, nil
}

type llmPlan struct {
	Action    string `json:"action"`
	Query     string `json:"query"`
	TopicType string `json:"topic_type"`
	Answer    string `json:"answer"`
}

// parsePlan turns the model's JSON plan into a Decision. Anything that is
// not a research request is treated as a direct answer.
func parsePlan(raw, query string, hint TopicHint) Decision {
	var p llmPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		if answer := ExtractJSONAnswer(raw); answer != "" {
			return DirectAnswer{Text: answer}
		}
		return DirectAnswer{Text: raw}
	}
	if strings.EqualFold(p.Action, "research") {
		return researchDecision(p.Query, p.TopicType, query, hint)
	}
	return DirectAnswer{Text: p.Answer}
}

// researchDecision fills model-omitted arguments from the user's query and
// the locally detected hint.
func researchDecision(modelQuery, modelTopic, query string, hint TopicHint) ResearchRequested {
	q := strings.TrimSpace(modelQuery)
	if q == "" {
		q = query
	}
	h := hint
	if strings.TrimSpace(modelTopic) != "" {
		h = ParseTopicHint(modelTopic)
	}
	return ResearchRequested{Query: q, Hint: h}
}

// ExtractJSONAnswer extracts the "answer" field from malformed JSON
// where the value may contain unescaped newlines or special characters.
func ExtractJSONAnswer(raw string) string {
	prefix := `"answer"`
	idx := strings.Index(raw, prefix)
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len(prefix):]
	rest = strings.TrimSpace(rest)
	if len(rest) == 0 || rest[0] != ':' {
		return ""
	}
	rest = strings.TrimSpace(rest[1:])
	if len(rest) == 0 || rest[0] != '"' {
		return ""
	}
	rest = rest[1:] // skip opening quote

	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\\' && i+1 < len(rest) {
			switch rest[i+1] {
			case '"':
				sb.WriteByte('"')
				i++
				continue
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			}
			sb.WriteByte(rest[i])
			continue
		}
		if rest[i] == '"' {
			return sb.String()
		}
		sb.WriteByte(rest[i])
	}
	return sb.String()
}
