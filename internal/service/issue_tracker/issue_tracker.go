package issue_tracker

import (
	"context"
	"errors"

	"basegraph.app/autofix/internal/model"
)

var ErrNotFound = errors.New("not found")

type IssueParams struct {
	Repository model.Repository
	Number     int
}

type CreateWebhookParams struct {
	Repository model.Repository
	URL        string
	Secret     string
	Events     []string
}

type Webhook struct {
	ID  int64
	URL string
}

// IssueTracker is the subset of the GitHub REST API the relay writes to.
type IssueTracker interface {
	AddLabels(ctx context.Context, params IssueParams, labels ...string) error
	// RemoveLabel is a no-op when the label is not present.
	RemoveLabel(ctx context.Context, params IssueParams, label string) error
	CreateComment(ctx context.Context, params IssueParams, body string) error
	FetchIssue(ctx context.Context, params IssueParams) (*model.IssueRef, error)
	CreateWebhook(ctx context.Context, params CreateWebhookParams) (*Webhook, error)
}
