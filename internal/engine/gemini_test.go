package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
	}}}
}

func callResponse(args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{
			FunctionCall: &genai.FunctionCall{Name: researchToolName, Args: args},
		}}},
	}}}
}

func TestDecisionFromResponse(t *testing.T) {
	d := decisionFromResponse(callResponse(map[string]any{"query": "solid state batteries 2026", "topic_type": "technology"}), "batteries", TopicGeneral)
	assert.Equal(t, ResearchRequested{Query: "solid state batteries 2026", Hint: TopicTechnology}, d)

	d = decisionFromResponse(callResponse(map[string]any{}), "batteries", TopicBusiness)
	assert.Equal(t, ResearchRequested{Query: "batteries", Hint: TopicBusiness}, d)

	d = decisionFromResponse(textResponse("Paris."), "capital of france", TopicGeneral)
	assert.Equal(t, DirectAnswer{Text: "Paris."}, d)
}

type fakeGenerator struct {
	configs []*genai.GenerateContentConfig
	prompts []string
	resp    []*genai.GenerateContentResponse
}

func (g *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.configs = append(g.configs, cfg)
	g.prompts = append(g.prompts, contents[0].Parts[0].Text)
	r := g.resp[0]
	g.resp = g.resp[1:]
	return r, nil
}

func TestGeminiSynthesizer(t *testing.T) {
	gen := &fakeGenerator{resp: []*genai.GenerateContentResponse{
		callResponse(map[string]any{"query": "q2"}),
		textResponse("the report"),
	}}
	s := newGeminiSynthesizer(gen, &Config{MaxFindings: 5})
	assert.Equal(t, defaultGeminiModel, s.model)

	d, err := s.Plan(context.Background(), "q", TopicHealth)
	require.NoError(t, err)
	assert.Equal(t, ResearchRequested{Query: "q2", Hint: TopicHealth}, d)

	report, err := s.Report(context.Background(), "q", Findings{Items: []RankedItem{{CandidateItem: CandidateItem{SourceID: "https://src"}}}})
	require.NoError(t, err)
	assert.Equal(t, "the report", report)

	require.Len(t, gen.configs, 2)
	require.Len(t, gen.configs[0].Tools, 1)
	assert.Equal(t, researchToolName, gen.configs[0].Tools[0].FunctionDeclarations[0].Name)
	assert.Empty(t, gen.configs[1].Tools)
	assert.True(t, strings.Contains(gen.prompts[1], "https://src"))
}

func TestNewGeminiSynthesizerNoKey(t *testing.T) {
	_, err := NewGeminiSynthesizer(context.Background(), &Config{})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"GEMINI_API_KEY"}, ce.Missing)
}
