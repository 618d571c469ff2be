package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
	issue_tracker "basegraph.app/autofix/internal/service/issue_tracker"
)

type Config struct {
	Tracker issue_tracker.IssueTracker
	// Analysis and Fix are optional; nil disables the stage's external call.
	Analysis backend.AnalysisBackend
	Fix      backend.FixBackend
	Logger   *slog.Logger
}

// Pipeline runs analyze → strategize → implement → report for one issue.
type Pipeline struct {
	tracker  issue_tracker.IssueTracker
	analysis backend.AnalysisBackend
	fix      backend.FixBackend
	logger   *slog.Logger
}

// Outcome summarizes a run. Err is set when the run aborted before reporting.
type Outcome struct {
	Analysis *model.Analysis
	Strategy *model.Strategy
	Result   *model.FixResult
	Err      error
}

func New(cfg Config) *Pipeline {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Pipeline{
		tracker:  cfg.Tracker,
		analysis: cfg.Analysis,
		fix:      cfg.Fix,
		logger:   l,
	}
}

// Process never returns an error: failures end up as a label and a comment
// on the issue.
func (p *Pipeline) Process(ctx context.Context, record model.ProcessingRecord) Outcome {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		IssueKey:   logger.Ptr(record.IssueID),
		Repository: logger.Ptr(record.Repository.FullName),
		RunID:      logger.Ptr(record.RunID),
		Component:  "autofix.pipeline",
	})

	sc := logger.StartSpan(ctx, "pipeline.process")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("issue.key", record.IssueID),
		attribute.Int64("run.id", record.RunID),
	)

	params := issue_tracker.IssueParams{Repository: record.Repository, Number: record.Issue.Number}

	p.logger.InfoContext(ctx, "processing issue", "title", record.Issue.Title, "forced", record.Forced)

	if err := p.tracker.AddLabels(ctx, params, LabelInProgress); err != nil {
		p.logger.WarnContext(ctx, "failed to add in-progress label", "error", err)
	}

	outcome := p.runStages(ctx, record)
	if outcome.Err != nil {
		sc.RecordError(outcome.Err)
		p.reportError(ctx, record, params, outcome.Err)
		return outcome
	}

	if err := p.report(ctx, record, params, *outcome.Analysis, *outcome.Strategy, *outcome.Result); err != nil {
		sc.RecordError(err)
		p.logger.ErrorContext(ctx, "failed to report outcome", "error", err)
	}

	p.logger.InfoContext(ctx, "issue processed",
		"type", outcome.Analysis.Type,
		"auto_fixable", outcome.Strategy.AutoFixable,
		"success", outcome.Result.Success)

	return outcome
}

// runStages runs analyze, strategize and implement, converting panics into
// errors at this boundary.
func (p *Pipeline) runStages(ctx context.Context, record model.ProcessingRecord) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "panic recovered in pipeline", "panic", r)
			outcome.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return Outcome{Err: fmt.Errorf("before analysis: %w", err)}
	}

	analysis := Analyze(ctx, record.Issue, record.Repository, p.analysis, p.logger)
	outcome.Analysis = &analysis

	strategy := Strategize(analysis)
	outcome.Strategy = &strategy

	result := p.implement(ctx, record, strategy)
	outcome.Result = &result

	return outcome
}

func (p *Pipeline) implement(ctx context.Context, record model.ProcessingRecord, strategy model.Strategy) model.FixResult {
	if !strategy.AutoFixable {
		return model.FixResult{Success: false, Message: humanReviewMessage}
	}
	if p.fix == nil {
		return model.FixResult{Success: false, Message: "Swarm coordination is disabled; no automatic fix was attempted."}
	}

	result, err := p.fix.Fix(ctx, backend.FixRequest{
		Issue:      record.Issue,
		Repository: record.Repository,
		Strategy:   strategy,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "fix attempt failed", "error", err)
		msg := err.Error()
		if result.Message != "" {
			msg = msg + "\n" + result.Message
		}
		return model.FixResult{Success: false, Message: msg}
	}

	return result
}

func (p *Pipeline) report(ctx context.Context, record model.ProcessingRecord, params issue_tracker.IssueParams, analysis model.Analysis, strategy model.Strategy, result model.FixResult) error {
	var errs []error
	if err := p.tracker.CreateComment(ctx, params, RenderReport(record, analysis, strategy, result)); err != nil {
		errs = append(errs, fmt.Errorf("posting report: %w", err))
	}

	// The in-progress label comes off even when the comment could not be posted.
	if err := p.tracker.RemoveLabel(ctx, params, LabelInProgress); err != nil {
		p.logger.WarnContext(ctx, "failed to remove in-progress label", "error", err)
	}

	final := LabelAttempted
	if result.Success {
		final = LabelCompleted
	}
	if err := p.tracker.AddLabels(ctx, params, final); err != nil {
		errs = append(errs, fmt.Errorf("adding %s label: %w", final, err))
	}
	return errors.Join(errs...)
}

func (p *Pipeline) reportError(ctx context.Context, record model.ProcessingRecord, params issue_tracker.IssueParams, cause error) {
	p.logger.ErrorContext(ctx, "auto-fix failed", "error", cause)

	if err := p.tracker.RemoveLabel(ctx, params, LabelInProgress); err != nil {
		p.logger.WarnContext(ctx, "failed to remove in-progress label", "error", err)
	}
	if err := p.tracker.AddLabels(ctx, params, LabelError); err != nil {
		p.logger.ErrorContext(ctx, "failed to add error label", "error", err)
	}
	if err := p.tracker.CreateComment(ctx, params, RenderError(record, cause)); err != nil {
		p.logger.ErrorContext(ctx, "failed to post error comment", "error", err)
	}
}
