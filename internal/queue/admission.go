package queue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"basegraph.app/autofix/common/id"
	"basegraph.app/autofix/internal/model"
)

var ErrClosed = errors.New("admission queue closed")

type EnqueueResult string

const (
	// Admitted means the issue holds an active slot and will be handed to the worker.
	Admitted EnqueueResult = "admitted"
	// Pending means capacity was full; the issue waits in FIFO order.
	Pending EnqueueResult = "pending"
	// Duplicate means the issue is already active or waiting.
	Duplicate EnqueueResult = "duplicate"
)

type pendingItem struct {
	issue model.IssueRef
	repo  model.Repository
}

// AdmissionQueue bounds how many issues are active at once. Admitted records
// are handed out in order through Next; Complete frees the slot and promotes
// the head of the pending list.
type AdmissionQueue struct {
	mu       sync.Mutex
	capacity int
	active   map[string]model.ProcessingRecord
	pending  []pendingItem
	ready    []model.ProcessingRecord
	closed   bool

	signal chan struct{}
	now    func() time.Time
	logger *slog.Logger
}

func NewAdmissionQueue(capacity int, logger *slog.Logger) *AdmissionQueue {
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdmissionQueue{
		capacity: capacity,
		active:   make(map[string]model.ProcessingRecord),
		signal:   make(chan struct{}, 1),
		now:      time.Now,
		logger:   logger,
	}
}

// Enqueue admits, parks or drops the issue. force bypasses the capacity check
// and may push the active count above capacity.
func (q *AdmissionQueue) Enqueue(ctx context.Context, issue model.IssueRef, repo model.Repository, force bool) EnqueueResult {
	key := model.IssueKey(repo, issue.Number)

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.active[key]; ok {
		q.logger.InfoContext(ctx, "issue already being processed", "issue_key", key)
		return Duplicate
	}

	if idx := q.pendingIndex(key); idx >= 0 {
		if !force {
			q.logger.InfoContext(ctx, "issue already queued", "issue_key", key)
			return Duplicate
		}
		// A manual trigger jumps the line.
		q.pending = slices.Delete(q.pending, idx, idx+1)
	}

	if len(q.active) >= q.capacity && !force {
		q.pending = append(q.pending, pendingItem{issue: issue, repo: repo})
		q.logger.InfoContext(ctx, "capacity reached, issue queued",
			"issue_key", key,
			"active", len(q.active),
			"pending", len(q.pending))
		return Pending
	}

	q.admitLocked(issue, repo, force)
	return Admitted
}

func (q *AdmissionQueue) admitLocked(issue model.IssueRef, repo model.Repository, force bool) {
	record := model.ProcessingRecord{
		IssueID:    model.IssueKey(repo, issue.Number),
		RunID:      id.New(),
		StartTime:  q.now(),
		Issue:      issue,
		Repository: repo,
		Forced:     force,
	}
	q.active[record.IssueID] = record
	q.ready = append(q.ready, record)

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *AdmissionQueue) pendingIndex(key string) int {
	return slices.IndexFunc(q.pending, func(p pendingItem) bool {
		return model.IssueKey(p.repo, p.issue.Number) == key
	})
}

// Next blocks until an admitted record is ready, the context ends, or the
// queue is closed.
func (q *AdmissionQueue) Next(ctx context.Context) (model.ProcessingRecord, error) {
	for {
		q.mu.Lock()
		if len(q.ready) > 0 {
			record := q.ready[0]
			q.ready = q.ready[1:]
			more := len(q.ready) > 0
			q.mu.Unlock()
			if more {
				select {
				case q.signal <- struct{}{}:
				default:
				}
			}
			return record, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return model.ProcessingRecord{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return model.ProcessingRecord{}, ctx.Err()
		case <-q.signal:
		}
	}
}

// Complete releases the issue's slot, on success or failure, and promotes
// pending issues while there is room.
func (q *AdmissionQueue) Complete(ctx context.Context, issueID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.active, issueID)

	for len(q.pending) > 0 && len(q.active) < q.capacity && !q.closed {
		head := q.pending[0]
		q.pending = q.pending[1:]
		q.admitLocked(head.issue, head.repo, false)
		q.logger.InfoContext(ctx, "promoted queued issue",
			"issue_key", model.IssueKey(head.repo, head.issue.Number),
			"pending", len(q.pending))
	}
}

// SetCapacity applies a new concurrency limit to future admissions.
func (q *AdmissionQueue) SetCapacity(capacity int) {
	if capacity <= 0 {
		return
	}
	q.mu.Lock()
	q.capacity = capacity
	q.mu.Unlock()
}

// Close stops admissions from being delivered. Records already active stay
// in the active set until completed.
func (q *AdmissionQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *AdmissionQueue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

func (q *AdmissionQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Active returns a snapshot of active records, oldest first.
func (q *AdmissionQueue) Active() []model.ProcessingRecord {
	q.mu.Lock()
	records := make([]model.ProcessingRecord, 0, len(q.active))
	for _, r := range q.active {
		records = append(records, r)
	}
	q.mu.Unlock()

	slices.SortFunc(records, func(a, b model.ProcessingRecord) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return records
}

func (q *AdmissionQueue) IsActive(issueID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.active[issueID]
	return ok
}
