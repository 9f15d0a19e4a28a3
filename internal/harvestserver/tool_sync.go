package harvestserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_harvest/internal/recsync"
)

// RecordingSyncInput is the (empty) input for recording_sync.
type RecordingSyncInput struct{}

func registerRecordingSync(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recording_sync",
		Description: "Run one recording sync pass now: list finished meeting recordings, skip any already delivered (same recording ID or identical content), upload the rest to the video host, and record them in the ledger. Fails if a pass is already running.",
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ RecordingSyncInput) (*mcp.CallToolResult, recsync.Summary, error) {
		sum, err := h.deps.Syncer.RunOnce(ctx)
		return nil, sum, err
	})
}
