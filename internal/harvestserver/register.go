package harvestserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_harvest/internal/engine"
	"github.com/anatolykoptev/go_harvest/internal/recsync"
)

// Researcher is the slice of *engine.Researcher the tools use.
type Researcher interface {
	Classify(query string) engine.TopicHint
	Investigate(ctx context.Context, query string, hint engine.TopicHint) (engine.Findings, error)
	Research(ctx context.Context, query string) (*engine.ResearchOutput, error)
}

// Syncer is the slice of *recsync.Syncer the tools use.
type Syncer interface {
	RunOnce(ctx context.Context) (recsync.Summary, error)
}

// Deps are the collaborators behind the tools. A nil Researcher or Syncer
// leaves the matching tools unregistered.
type Deps struct {
	Researcher Researcher
	Syncer     Syncer
	Cache      *engine.Cache
}

// RegisterTools registers deep_research, multi_angle_search and
// recording_sync on server and returns how many were added.
func RegisterTools(server *mcp.Server, deps Deps) int {
	h := &handlers{deps: deps}
	n := 0
	if deps.Researcher != nil {
		registerDeepResearch(server, h)
		registerMultiAngleSearch(server, h)
		n += 2
	}
	if deps.Syncer != nil {
		registerRecordingSync(server, h)
		n++
	}
	slog.Info("tools registered", slog.Int("count", n))
	return n
}

type handlers struct {
	deps Deps
}
