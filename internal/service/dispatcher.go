package service

import (
	"context"
	"log/slog"

	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/internal/mapper"
	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/queue"
)

// Admitter is the part of the admission queue the dispatcher needs.
type Admitter interface {
	Enqueue(ctx context.Context, issue model.IssueRef, repo model.Repository, force bool) queue.EnqueueResult
}

type DispatchResult struct {
	Enqueued  bool
	Forced    bool
	Admission queue.EnqueueResult
	// Reason is set when the event was dropped.
	Reason string
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, event *mapper.Event) DispatchResult
}

type eventDispatcher struct {
	settings model.Settings
	queue    Admitter
	logger   *slog.Logger
}

// NewEventDispatcher binds a settings snapshot taken at startup.
func NewEventDispatcher(settings model.Settings, q Admitter, logger *slog.Logger) EventDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventDispatcher{
		settings: settings.Clone(),
		queue:    q,
		logger:   logger,
	}
}

func (d *eventDispatcher) Dispatch(ctx context.Context, event *mapper.Event) DispatchResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		IssueKey:   logger.Ptr(model.IssueKey(event.Repository, event.Issue.Number)),
		Repository: logger.Ptr(event.Repository.FullName),
		Component:  "autofix.dispatcher",
	})

	switch event.Type {
	case mapper.EventPush:
		d.logger.InfoContext(ctx, "push received",
			"ref", event.Ref,
			"commits", event.CommitCount)
		return DispatchResult{Reason: "push events are not processed"}

	case mapper.EventIssueOpened, mapper.EventIssueLabeled:
		if event.Type == mapper.EventIssueLabeled && !TriggersOnLabel(event.Label, d.settings) {
			return d.drop(ctx, "label does not trigger auto-fix")
		}
		if !d.settings.Enabled {
			return d.drop(ctx, "auto-fix disabled")
		}
		if !ShouldProcess(event.Issue, event.Repository, d.settings) {
			return d.drop(ctx, "issue not eligible")
		}
		return d.enqueue(ctx, event, false)

	case mapper.EventCommentCreated:
		if !HasManualTrigger(event.CommentBody) {
			return DispatchResult{Reason: "comment without trigger"}
		}
		if !d.settings.Enabled {
			return d.drop(ctx, "auto-fix disabled")
		}
		return d.enqueue(ctx, event, true)

	default:
		return DispatchResult{Reason: "action not handled"}
	}
}

func (d *eventDispatcher) enqueue(ctx context.Context, event *mapper.Event, force bool) DispatchResult {
	admission := d.queue.Enqueue(ctx, event.Issue, event.Repository, force)
	d.logger.InfoContext(ctx, "issue dispatched",
		"admission", admission,
		"forced", force,
		"sender", event.Sender)

	return DispatchResult{
		Enqueued:  admission != queue.Duplicate,
		Forced:    force,
		Admission: admission,
	}
}

func (d *eventDispatcher) drop(ctx context.Context, reason string) DispatchResult {
	d.logger.DebugContext(ctx, "event dropped", "reason", reason)
	return DispatchResult{Reason: reason}
}
