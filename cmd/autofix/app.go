package main

import (
	"context"
	"log/slog"

	"basegraph.app/autofix/core/config"
	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/pipeline"
	issue_tracker "basegraph.app/autofix/internal/service/issue_tracker"
)

// backends holds whichever external tools passed their probe. A nil field
// means the subsystem is disabled for this process.
type backends struct {
	analysis backend.AnalysisBackend
	fix      backend.FixBackend

	sparcStatus string
	swarmStatus string
}

func setupBackends(ctx context.Context, cfg config.Config, settings model.Settings, runner backend.CommandRunner, l *slog.Logger) backends {
	var b backends

	b.sparcStatus = "disabled"
	if settings.Sparc.Enabled {
		sparc, err := backend.NewSparcBackend(runner, cfg.Backends.SparcCommand, settings.Sparc)
		if err == nil {
			err = sparc.Probe(ctx)
		}
		if err != nil {
			l.WarnContext(ctx, "sparc unavailable, analysis will use heuristics only", "error", err)
			b.sparcStatus = "unavailable"
		} else {
			b.analysis = sparc
			b.sparcStatus = "available"
		}
	}

	b.swarmStatus = "disabled"
	if settings.Swarm.Enabled {
		swarm, err := backend.NewSwarmBackend(runner, cfg.Backends.SwarmCommand, settings.Swarm)
		if err == nil {
			err = swarm.Probe(ctx)
		}
		if err != nil {
			l.WarnContext(ctx, "swarm unavailable, fixes will not be attempted", "error", err)
			b.swarmStatus = "unavailable"
		} else {
			b.fix = swarm
			b.swarmStatus = "available"
		}
	}

	return b
}

func newPipeline(tracker issue_tracker.IssueTracker, b backends, l *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Config{
		Tracker:  tracker,
		Analysis: b.analysis,
		Fix:      b.fix,
		Logger:   l,
	})
}
