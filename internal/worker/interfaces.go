package worker

import (
	"context"

	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/pipeline"
)

// Source hands out admitted records and takes back completed ones.
type Source interface {
	Next(ctx context.Context) (model.ProcessingRecord, error)
	Complete(ctx context.Context, issueID string)
	ActiveCount() int
}

// Processor abstracts the issue pipeline for testability.
type Processor interface {
	Process(ctx context.Context, record model.ProcessingRecord) pipeline.Outcome
}
