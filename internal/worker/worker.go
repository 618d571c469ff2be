package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/queue"
)

type Worker struct {
	source    Source
	processor Processor
	logger    *slog.Logger

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(source Source, processor Processor, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		source:    source,
		processor: processor,
		logger:    logger,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run processes admitted records one at a time until ctx ends, Stop is
// called, or the source is closed.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "autofix.worker"})

	// Next only watches ctx, so Stop cancels it.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	w.logger.InfoContext(ctx, "worker started")

	for {
		record, err := w.source.Next(runCtx)
		if err != nil {
			switch {
			case errors.Is(err, queue.ErrClosed):
				w.logger.InfoContext(ctx, "queue closed, worker stopping")
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				w.logger.InfoContext(ctx, "worker stopping")
				return nil
			}
		}

		// An in-flight run outlives Stop and ctx; its subprocesses are
		// abandoned, never killed, at shutdown.
		w.processSafe(context.WithoutCancel(runCtx), record)
	}
}

// Stop ends the wait for the next record and blocks until the current run,
// if any, has finished.
func (w *Worker) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	<-w.stoppedCh
}

// processSafe releases the slot however processing ends.
func (w *Worker) processSafe(ctx context.Context, record model.ProcessingRecord) {
	defer w.source.Complete(ctx, record.IssueID)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				w.logger.ErrorContext(ctx, "panic recovered in issue processing",
					"panic", r,
					"issue_key", record.IssueID)
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return w.processor.Process(ctx, record).Err
	}()

	if err != nil {
		w.logger.WarnContext(ctx, "issue processing failed",
			"error", err,
			"issue_key", record.IssueID,
			"duration", time.Since(record.StartTime))
		return
	}

	w.logger.InfoContext(ctx, "issue processing finished",
		"issue_key", record.IssueID,
		"duration", time.Since(record.StartTime))
}

// Drain polls the source once per interval until nothing is active or the
// deadline passes. It reports how many records were still active at return.
func Drain(ctx context.Context, source Source, interval, deadline time.Duration) int {
	timeout := time.NewTimer(deadline)
	defer timeout.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		active := source.ActiveCount()
		if active == 0 {
			return 0
		}
		select {
		case <-ctx.Done():
			return source.ActiveCount()
		case <-timeout.C:
			return source.ActiveCount()
		case <-ticker.C:
		}
	}
}
