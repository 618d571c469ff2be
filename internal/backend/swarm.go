package backend

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"basegraph.app/autofix/internal/model"
)

// SuccessMarker is the token the coordinator prints when a fix landed.
const SuccessMarker = "successfully"

var (
	successPattern     = regexp.MustCompile(`(?i)\b` + SuccessMarker + `\b`)
	branchPattern      = regexp.MustCompile(`(?i)branch:\s*([\w./-]+)`)
	pullRequestPattern = regexp.MustCompile(`(?i)\b(pull request|PR #\d+)`)
	negationPattern    = regexp.MustCompile(`(?i)\b(no|not|never|without|cannot|can't|couldn't|failed to)\b`)
)

// SwarmBackend runs the multi-agent coordinator to implement a fix.
type SwarmBackend struct {
	runner   CommandRunner
	base     Command
	settings model.SwarmSettings
}

func NewSwarmBackend(runner CommandRunner, commandLine string, settings model.SwarmSettings) (*SwarmBackend, error) {
	if runner == nil {
		runner = ExecCommandRunner{}
	}
	base, err := ParseCommandLine(commandLine)
	if err != nil {
		return nil, fmt.Errorf("swarm command: %w", err)
	}
	return &SwarmBackend{runner: runner, base: base, settings: settings}, nil
}

func (b *SwarmBackend) Fix(ctx context.Context, req FixRequest) (model.FixResult, error) {
	objective := fmt.Sprintf("Fix GitHub issue #%d in %s: %s", req.Issue.Number, req.Repository.FullName, req.Strategy.Approach)

	args := []string{objective, "--strategy", "development"}
	if b.settings.Topology != "" {
		args = append(args, "--topology", b.settings.Topology)
	}
	if b.settings.MaxAgents > 0 {
		args = append(args, "--max-agents", strconv.Itoa(b.settings.MaxAgents))
	}
	args = append(args, "--non-interactive")

	out, err := b.runner.Run(ctx, b.base.with(args...))
	if err != nil {
		return model.FixResult{Success: false, Message: strings.TrimSpace(string(out))}, fmt.Errorf("swarm fix: %w", err)
	}

	return ParseFixOutput(string(out)), nil
}

func (b *SwarmBackend) Probe(ctx context.Context) error {
	return probe(ctx, b.runner, b.base)
}

// ParseFixOutput interprets coordinator output. Anything without an
// affirmative success line is a failed attempt carrying the raw output.
func ParseFixOutput(out string) model.FixResult {
	out = strings.TrimSpace(out)
	result := model.FixResult{Message: out}

	if !affirmed(out, successPattern) {
		return result
	}

	result.Success = true
	if m := branchPattern.FindStringSubmatch(out); m != nil {
		result.BranchName = m[1]
	}
	result.PullRequestCreated = affirmed(out, pullRequestPattern)
	return result
}

// affirmed reports whether some line matches pattern without a negation
// ahead of the match on that line.
func affirmed(out string, pattern *regexp.Regexp) bool {
	for _, line := range strings.Split(out, "\n") {
		loc := pattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if !negationPattern.MatchString(line[:loc[0]]) {
			return true
		}
	}
	return false
}
