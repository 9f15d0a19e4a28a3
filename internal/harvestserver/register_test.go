package harvestserver

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_harvest/internal/engine"
	"github.com/anatolykoptev/go_harvest/internal/recsync"
	"github.com/anatolykoptev/go_harvest/internal/toolutil"
)

type fakeResearcher struct {
	investigations int
	researches     int
	gotHint        engine.TopicHint
}

func (f *fakeResearcher) Classify(query string) engine.TopicHint {
	return engine.Classify(query, engine.DefaultTopicRules)
}

func (f *fakeResearcher) Investigate(_ context.Context, query string, hint engine.TopicHint) (engine.Findings, error) {
	f.investigations++
	f.gotHint = hint
	return engine.Findings{
		Query: query,
		Topic: hint,
		Items: []engine.RankedItem{
			{CandidateItem: engine.CandidateItem{SourceID: "a"}, Score: 0.9},
			{CandidateItem: engine.CandidateItem{SourceID: "b"}, Score: 0.8},
			{CandidateItem: engine.CandidateItem{SourceID: "c"}, Score: 0.7},
		},
	}, nil
}

func (f *fakeResearcher) Research(_ context.Context, query string) (*engine.ResearchOutput, error) {
	f.researches++
	return &engine.ResearchOutput{Query: query, Mode: "direct", Report: "answer"}, nil
}

type fakeSyncer struct {
	err error
}

func (f fakeSyncer) RunOnce(context.Context) (recsync.Summary, error) {
	return recsync.Summary{RunID: "r1", Succeeded: 2}, f.err
}

func TestDeepResearch(t *testing.T) {
	r := &fakeResearcher{}
	h := &handlers{deps: Deps{Researcher: r, Cache: engine.NewCache("", time.Minute, 10)}}
	ctx := context.Background()

	out, err := h.deepResearch(ctx, DeepResearchInput{Query: " What is Go? "})
	require.NoError(t, err)
	assert.Equal(t, "What is Go?", out.Query)

	_, err = h.deepResearch(ctx, DeepResearchInput{Query: "what is go?"})
	require.NoError(t, err)
	assert.Equal(t, 1, r.researches, "second call is served from cache")

	_, err = h.deepResearch(ctx, DeepResearchInput{})
	assert.ErrorIs(t, err, toolutil.ErrQueryRequired)
}

func TestMultiAngleSearch(t *testing.T) {
	tests := []struct {
		name     string
		input    MultiAngleSearchInput
		wantHint engine.TopicHint
		wantLen  int
	}{
		{"detected topic", MultiAngleSearchInput{Query: "stock market outlook"}, engine.TopicBusiness, 3},
		{"explicit topic", MultiAngleSearchInput{Query: "stock market outlook", Topic: "health"}, engine.TopicHealth, 3},
		{"limited", MultiAngleSearchInput{Query: "anything", Limit: 2}, engine.TopicGeneral, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeResearcher{}
			h := &handlers{deps: Deps{Researcher: r}}
			f, err := h.multiAngleSearch(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHint, r.gotHint)
			assert.Len(t, f.Items, tt.wantLen)
		})
	}
}

func TestRegisterTools(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		deps Deps
		want []string
	}{
		{"all", Deps{Researcher: &fakeResearcher{}, Syncer: fakeSyncer{}}, []string{"deep_research", "multi_angle_search", "recording_sync"}},
		{"research only", Deps{Researcher: &fakeResearcher{}}, []string{"deep_research", "multi_angle_search"}},
		{"sync only", Deps{Syncer: fakeSyncer{err: errors.New("x")}}, []string{"recording_sync"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
			assert.Equal(t, len(tt.want), RegisterTools(server, tt.deps))

			st, ct := mcp.NewInMemoryTransports()
			ss, err := server.Connect(ctx, st, nil)
			require.NoError(t, err)
			defer ss.Close()

			client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0"}, nil)
			cs, err := client.Connect(ctx, ct, nil)
			require.NoError(t, err)
			defer cs.Close()

			res, err := cs.ListTools(ctx, nil)
			require.NoError(t, err)
			var names []string
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			slices.Sort(names)
			assert.Equal(t, tt.want, names)
		})
	}
}
