package backend

import (
	"context"
	"fmt"

	"basegraph.app/autofix/internal/model"
)

// AnalysisBackend produces free-text analysis for an issue.
type AnalysisBackend interface {
	Analyze(ctx context.Context, issue model.IssueRef, repo model.Repository) (string, error)
}

type FixRequest struct {
	Issue      model.IssueRef
	Repository model.Repository
	Strategy   model.Strategy
}

// FixBackend attempts an automated fix. A non-nil error means the attempt
// could not run; a completed attempt reports its outcome in FixResult.
type FixBackend interface {
	Fix(ctx context.Context, req FixRequest) (model.FixResult, error)
}

// Prober checks that the external tool is installed.
type Prober interface {
	Probe(ctx context.Context) error
}

func probe(ctx context.Context, runner CommandRunner, base Command) error {
	if _, err := runner.Run(ctx, base.with("--version")); err != nil {
		return fmt.Errorf("%s unavailable: %w", base.String(), err)
	}
	return nil
}
