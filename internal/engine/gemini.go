package engine

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	researchToolName   = "comprehensive_research"
	defaultGeminiModel = "gemini-2.5-flash"
)

// contentGenerator is the slice of *genai.Models the synthesizer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSynthesizer uses Gemini function calling: the model either answers
// directly or calls comprehensive_research with a query and topic.
type GeminiSynthesizer struct {
	models      contentGenerator
	model       string
	temperature float32
	maxTokens   int32
	maxFindings int
}

// NewGeminiSynthesizer creates a Gemini API client from cfg.
func NewGeminiSynthesizer(ctx context.Context, cfg *Config) (*GeminiSynthesizer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, &ConfigError{Component: "gemini", Missing: []string{"GEMINI_API_KEY"}}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newGeminiSynthesizer(client.Models, cfg), nil
}

func newGeminiSynthesizer(models contentGenerator, cfg *Config) *GeminiSynthesizer {
	model := cfg.LLMModel
	if model == "" {
		model = defaultGeminiModel
	}
	temp := float32(cfg.LLMTemperature)
	if temp == 0 {
		temp = 0.1
	}
	maxTokens := int32(cfg.LLMMaxTokens)
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &GeminiSynthesizer{
		models:      models,
		model:       model,
		temperature: temp,
		maxTokens:   maxTokens,
		maxFindings: cfg.MaxFindings,
	}
}

var researchDecl = &genai.FunctionDeclaration{
	Name:        researchToolName,
	Description: researchToolDescription,
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "The research query to investigate comprehensively",
			},
			"topic_type": {
				Type:        genai.TypeString,
				Description: "Type of topic",
				Enum:        []string{"news", "general", "academic", "business", "technology", "health", "politics"},
			},
		},
		Required: []string{"query"},
	},
}

func (s *GeminiSynthesizer) config(withTools bool) *genai.GenerateContentConfig {
	c := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(researchSystem, genai.RoleUser),
		Temperature:       genai.Ptr(s.temperature),
		TopP:              genai.Ptr[float32](0.8),
		TopK:              genai.Ptr[float32](40),
		MaxOutputTokens:   s.maxTokens,
	}
	if withTools {
		c.Tools = []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{researchDecl}}}
	}
	return c
}

func (s *GeminiSynthesizer) generate(ctx context.Context, prompt string, withTools bool) (*genai.GenerateContentResponse, error) {
	metrics.LLMCalls.Add(1)
	resp, err := s.models.GenerateContent(ctx, s.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		s.config(withTools))
	if err != nil {
		metrics.LLMErrors.Add(1)
		return nil, err
	}
	if resp == nil {
		metrics.LLMErrors.Add(1)
		return nil, errors.New("empty response")
	}
	return resp, nil
}

// Plan implements Synthesizer.
func (s *GeminiSynthesizer) Plan(ctx context.Context, query string, hint TopicHint) (Decision, error) {
	resp, err := s.generate(ctx, "Conduct comprehensive research and provide deep analysis on: "+query, true)
	if err != nil {
		return nil, fmt.Errorf("gemini plan: %w", err)
	}
	return decisionFromResponse(resp, query, hint), nil
}

// Report implements Synthesizer.
func (s *GeminiSynthesizer) Report(ctx context.Context, query string, findings Findings) (string, error) {
	prompt := fmt.Sprintf(reportPrompt, currentDate(), query, FormatFindings(findings, s.maxFindings))
	resp, err := s.generate(ctx, prompt, false)
	if err != nil {
		return "", fmt.Errorf("gemini report: %w", err)
	}
	return resp.Text(), nil
}

// decisionFromResponse picks the first research function call, if any.
func decisionFromResponse(resp *genai.GenerateContentResponse, query string, hint TopicHint) Decision {
	for _, fc := range resp.FunctionCalls() {
		if fc == nil || fc.Name != researchToolName {
			continue
		}
		q, _ := fc.Args["query"].(string)
		t, _ := fc.Args["topic_type"].(string)
		return researchDecision(q, t, query, hint)
	}
	return DirectAnswer{Text: resp.Text()}
}
