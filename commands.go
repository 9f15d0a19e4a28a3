package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_harvest/internal/engine"
	"github.com/anatolykoptev/go_harvest/internal/harvestserver"
	"github.com/anatolykoptev/go_harvest/internal/recsync"
)

func newServeCommand() *cobra.Command {
	var withSync bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server over HTTP.

Research tools are registered when the search provider and synthesizer are
configured; recording_sync when Zoom and Vimeo credentials are present.
With --sync the recording sync also runs on SYNC_SCHEDULE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), withSync)
		},
	}
	cmd.Flags().BoolVar(&withSync, "sync", false, "also run the recording sync on its schedule")
	return cmd
}

func runServe(ctx context.Context, withSync bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var deps harvestserver.Deps
	if r, err := buildResearch(ctx); err != nil {
		slog.Warn("research tools disabled", slog.Any("error", err))
	} else {
		defer r.Close()
		deps.Researcher = r.researcher
		deps.Cache = r.cache
	}
	if s, err := buildSync(ctx); err != nil {
		slog.Warn("recording sync disabled", slog.Any("error", err))
	} else {
		defer s.Close()
		deps.Syncer = s.syncer
		if withSync {
			sched := recsync.NewScheduler(s.syncer, s.schedule)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer func() { <-sched.Stop().Done() }()
		}
	}
	if deps.Researcher == nil && deps.Syncer == nil {
		return errors.New("nothing to serve: neither research nor recording sync is configured")
	}

	port := env.Str("MCP_PORT", "8891")
	slog.Info("starting go_harvest", slog.String("port", port), slog.String("version", version))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_harvest",
		Version: version,
	}, nil)
	harvestserver.RegisterTools(server, deps)

	return mcpserver.Run(server, mcpserver.Config{
		Name:         "go_harvest",
		Version:      version,
		Port:         port,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}

func newSyncCommand() *cobra.Command {
	var scheduled bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy new meeting recordings to the video host",
		Long: `Run one recording sync pass and print its summary as JSON.

With --schedule, run once immediately and then on SYNC_SCHEDULE
(default "@every 1h") until interrupted. A tick is skipped while the
previous pass is still running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := buildSync(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if scheduled {
				sched := recsync.NewScheduler(s.syncer, s.schedule)
				if err := sched.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				slog.Info("shutting down sync scheduler")
				<-sched.Stop().Done()
				return nil
			}

			sum, err := s.syncer.RunOnce(ctx)
			if printErr := printJSON(cmd.OutOrStdout(), sum); printErr != nil {
				return printErr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&scheduled, "schedule", false, "keep running on SYNC_SCHEDULE")
	return cmd
}

func newResearchCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "research <query>",
		Short: "Research a query and print the report",
		Long: `Research a query: the synthesizer either answers directly or requests a
multi-angle search, whose ranked findings it turns into a report.

With --raw, skip synthesis and print the ranked findings as JSON.

Example:
  go_harvest research "latest fusion energy breakthroughs"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r, err := buildResearch(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			query := strings.Join(args, " ")
			if raw {
				f, err := r.researcher.Investigate(ctx, query, r.researcher.Classify(query))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), f)
			}

			out, err := r.researcher.Research(ctx, query)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print ranked findings as JSON without synthesis")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, out *engine.ResearchOutput) error {
	var sb strings.Builder
	sb.WriteString(out.Report)
	sb.WriteString("\n")
	if len(out.Sources) > 0 {
		fmt.Fprintf(&sb, "\nSources (%d of %d, %d strategies):\n", len(out.Sources), out.TotalSources, out.StrategiesUsed)
		for i, s := range out.Sources {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
