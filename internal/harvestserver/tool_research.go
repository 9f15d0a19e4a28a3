package harvestserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_harvest/internal/engine"
	"github.com/anatolykoptev/go_harvest/internal/toolutil"
)

// DeepResearchInput is the input for deep_research.
type DeepResearchInput struct {
	Query string `json:"query" jsonschema:"Question or topic to research"`
}

// MultiAngleSearchInput is the input for multi_angle_search.
type MultiAngleSearchInput struct {
	Query string `json:"query" jsonschema:"Base search query"`
	Topic string `json:"topic,omitempty" jsonschema:"Topic hint: general, news, business, technology, health, politics, academic (default: detected from the query)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max ranked items to return (default: all)"`
}

func registerDeepResearch(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "deep_research",
		Description: "Answer a question directly or, when it needs current or in-depth information, run a multi-angle web search (recent, academic, breaking news, historical, expert angles), rank the findings by relevance and recency, and write a structured research report with sources.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input DeepResearchInput) (*mcp.CallToolResult, *engine.ResearchOutput, error) {
		out, err := h.deepResearch(ctx, input)
		return nil, out, err
	})
}

func (h *handlers) deepResearch(ctx context.Context, input DeepResearchInput) (*engine.ResearchOutput, error) {
	q, err := toolutil.RequireQuery(input.Query)
	if err != nil {
		return nil, err
	}
	key := engine.CacheKey("deep_research", strings.ToLower(q))
	return toolutil.Cached(ctx, h.deps.Cache, key, func(ctx context.Context) (*engine.ResearchOutput, error) {
		return h.deps.Researcher.Research(ctx, q)
	})
}

func registerMultiAngleSearch(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "multi_angle_search",
		Description: "Run the multi-angle search without LLM synthesis. Returns deduplicated items ranked by 0.7*relevance + 0.3*recency, the best direct answer from the search provider, and any strategies that failed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input MultiAngleSearchInput) (*mcp.CallToolResult, engine.Findings, error) {
		out, err := h.multiAngleSearch(ctx, input)
		return nil, out, err
	})
}

func (h *handlers) multiAngleSearch(ctx context.Context, input MultiAngleSearchInput) (engine.Findings, error) {
	q, err := toolutil.RequireQuery(input.Query)
	if err != nil {
		return engine.Findings{}, err
	}
	hint := h.deps.Researcher.Classify(q)
	if strings.TrimSpace(input.Topic) != "" {
		hint = engine.ParseTopicHint(input.Topic)
	}

	key := engine.CacheKey("multi_angle_search", strings.ToLower(q), string(hint))
	f, err := toolutil.Cached(ctx, h.deps.Cache, key, func(ctx context.Context) (engine.Findings, error) {
		return h.deps.Researcher.Investigate(ctx, q, hint)
	})
	if err != nil {
		return engine.Findings{}, err
	}
	if input.Limit > 0 && len(f.Items) > input.Limit {
		f.Items = f.Items[:input.Limit]
	}
	return f, nil
}
