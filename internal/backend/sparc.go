package backend

import (
	"context"
	"fmt"
	"strings"

	"basegraph.app/autofix/internal/model"
)

// SparcBackend runs the methodology CLI in analysis mode.
type SparcBackend struct {
	runner   CommandRunner
	base     Command
	settings model.SparcSettings
}

func NewSparcBackend(runner CommandRunner, commandLine string, settings model.SparcSettings) (*SparcBackend, error) {
	if runner == nil {
		runner = ExecCommandRunner{}
	}
	base, err := ParseCommandLine(commandLine)
	if err != nil {
		return nil, fmt.Errorf("sparc command: %w", err)
	}
	return &SparcBackend{runner: runner, base: base, settings: settings}, nil
}

func (b *SparcBackend) Analyze(ctx context.Context, issue model.IssueRef, repo model.Repository) (string, error) {
	prompt := fmt.Sprintf("Analyze GitHub issue #%d in %s: %s\n\n%s", issue.Number, repo.FullName, issue.Title, issue.Body)

	args := []string{"run", b.settings.Mode, prompt}
	if b.settings.Namespace != "" {
		args = append(args, "--namespace", b.settings.Namespace)
	}
	args = append(args, "--non-interactive")

	out, err := b.runner.Run(ctx, b.base.with(args...))
	if err != nil {
		return "", fmt.Errorf("sparc analysis: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (b *SparcBackend) Probe(ctx context.Context) error {
	return probe(ctx, b.runner, b.base)
}
