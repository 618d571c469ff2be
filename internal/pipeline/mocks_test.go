package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
	issue_tracker "basegraph.app/autofix/internal/service/issue_tracker"
)

type trackerCall struct {
	op    string
	value string
}

type fakeTracker struct {
	mu         sync.Mutex
	calls      []trackerCall
	comments   []string
	labelErr   error
	commentErr error
}

func (f *fakeTracker) record(op, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, trackerCall{op: op, value: value})
}

func (f *fakeTracker) AddLabels(ctx context.Context, params issue_tracker.IssueParams, labels ...string) error {
	for _, l := range labels {
		f.record("add", l)
	}
	return f.labelErr
}

func (f *fakeTracker) RemoveLabel(ctx context.Context, params issue_tracker.IssueParams, label string) error {
	f.record("remove", label)
	return nil
}

func (f *fakeTracker) CreateComment(ctx context.Context, params issue_tracker.IssueParams, body string) error {
	f.record("comment", fmt.Sprintf("%s#%d", params.Repository.FullName, params.Number))
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, body)
	return nil
}

func (f *fakeTracker) FetchIssue(ctx context.Context, params issue_tracker.IssueParams) (*model.IssueRef, error) {
	return nil, issue_tracker.ErrNotFound
}

func (f *fakeTracker) CreateWebhook(ctx context.Context, params issue_tracker.CreateWebhookParams) (*issue_tracker.Webhook, error) {
	return nil, errors.New("not supported")
}

func (f *fakeTracker) labelOps() []trackerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ops []trackerCall
	for _, c := range f.calls {
		if c.op != "comment" {
			ops = append(ops, c)
		}
	}
	return ops
}

type fakeAnalysis struct {
	output string
	err    error
}

func (f *fakeAnalysis) Analyze(ctx context.Context, issue model.IssueRef, repo model.Repository) (string, error) {
	return f.output, f.err
}

type fakeFix struct {
	result model.FixResult
	err    error
	panics bool
	calls  int
}

func (f *fakeFix) Fix(ctx context.Context, req backend.FixRequest) (model.FixResult, error) {
	f.calls++
	if f.panics {
		panic("coordinator exploded")
	}
	return f.result, f.err
}
