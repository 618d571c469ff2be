package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"basegraph.app/autofix/common/id"
	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/pipeline"
	"basegraph.app/autofix/internal/service"
	issue_tracker "basegraph.app/autofix/internal/service/issue_tracker"
)

func (c *cli) testIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-issue <owner> <repo> <number>",
		Short: "Run the pipeline once against an existing issue",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, err := parseRepository(args[0] + "/" + args[1])
			if err != nil {
				return err
			}
			number, err := strconv.Atoi(args[2])
			if err != nil || number <= 0 {
				return fmt.Errorf("invalid issue number %q", args[2])
			}

			cfg, err := c.loadConfig(true)
			if err != nil {
				return err
			}
			l := c.newLogger(cfg)
			if err := id.Init(1); err != nil {
				return err
			}

			settings, err := c.settingsStore(cfg, l).Load(ctx)
			if err != nil {
				return err
			}

			tracker := issue_tracker.NewGitHubIssueTracker(cfg.GitHub.Token)
			issue, err := tracker.FetchIssue(ctx, issue_tracker.IssueParams{Repository: repo, Number: number})
			if err != nil {
				return fmt.Errorf("fetching %s: %w", model.IssueKey(repo, number), err)
			}

			fmt.Fprintf(c.out, "Issue %s: %s\n", model.IssueKey(repo, number), issue.Title)
			fmt.Fprintf(c.out, "Eligible for automatic processing: %s\n\n", yesNo(service.ShouldProcess(*issue, repo, settings)))

			b := setupBackends(ctx, cfg, settings, backend.ExecCommandRunner{}, l)
			outcome := newPipeline(tracker, b, l).Process(ctx, model.ProcessingRecord{
				IssueID:    model.IssueKey(repo, number),
				RunID:      id.New(),
				StartTime:  time.Now(),
				Issue:      *issue,
				Repository: repo,
				Forced:     true,
			})

			printOutcome(c.out, outcome)
			return outcome.Err
		},
	}
}

func printOutcome(w io.Writer, outcome pipeline.Outcome) {
	if outcome.Analysis != nil {
		fmt.Fprintf(w, "Type:          %s\n", outcome.Analysis.Type)
		fmt.Fprintf(w, "Severity:      %s\n", outcome.Analysis.Severity)
		fmt.Fprintf(w, "Related files: %d\n", len(outcome.Analysis.RelatedFiles))
	}
	if outcome.Strategy != nil {
		fmt.Fprintf(w, "Approach:      %s\n", outcome.Strategy.Approach)
		fmt.Fprintf(w, "Auto-fixable:  %s\n", yesNo(outcome.Strategy.AutoFixable))
	}
	if outcome.Result != nil {
		fmt.Fprintf(w, "Fixed:         %s\n", yesNo(outcome.Result.Success))
	}
	if outcome.Err != nil {
		fmt.Fprintf(w, "Error:         %v\n", outcome.Err)
	}
}
