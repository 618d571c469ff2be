package issue_tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"

	"basegraph.app/autofix/internal/model"
)

// DefaultWebhookEvents are the events the relay subscribes to.
var DefaultWebhookEvents = []string{"issues", "issue_comment", "push"}

type gitHubIssueTracker struct {
	client *github.Client
}

func NewGitHubIssueTracker(token string) IssueTracker {
	return &gitHubIssueTracker{client: github.NewClient(nil).WithAuthToken(token)}
}

// NewGitHubIssueTrackerWithClient is used by tests to point at a fake server.
func NewGitHubIssueTrackerWithClient(client *github.Client) IssueTracker {
	return &gitHubIssueTracker{client: client}
}

func (s *gitHubIssueTracker) AddLabels(ctx context.Context, params IssueParams, labels ...string) error {
	_, _, err := s.client.Issues.AddLabelsToIssue(ctx,
		params.Repository.Owner(),
		params.Repository.Name(),
		params.Number,
		labels,
	)
	if err != nil {
		return fmt.Errorf("adding labels to %s: %w", model.IssueKey(params.Repository, params.Number), err)
	}
	return nil
}

func (s *gitHubIssueTracker) RemoveLabel(ctx context.Context, params IssueParams, label string) error {
	_, err := s.client.Issues.RemoveLabelForIssue(ctx,
		params.Repository.Owner(),
		params.Repository.Name(),
		params.Number,
		label,
	)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("removing label %q from %s: %w", label, model.IssueKey(params.Repository, params.Number), err)
	}
	return nil
}

func (s *gitHubIssueTracker) CreateComment(ctx context.Context, params IssueParams, body string) error {
	_, _, err := s.client.Issues.CreateComment(ctx,
		params.Repository.Owner(),
		params.Repository.Name(),
		params.Number,
		&github.IssueComment{Body: github.String(body)},
	)
	if err != nil {
		return fmt.Errorf("commenting on %s: %w", model.IssueKey(params.Repository, params.Number), err)
	}
	return nil
}

func (s *gitHubIssueTracker) FetchIssue(ctx context.Context, params IssueParams) (*model.IssueRef, error) {
	issue, _, err := s.client.Issues.Get(ctx,
		params.Repository.Owner(),
		params.Repository.Name(),
		params.Number,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", model.IssueKey(params.Repository, params.Number), ErrNotFound)
		}
		return nil, fmt.Errorf("fetching issue from github: %w", err)
	}

	return mapToIssue(issue), nil
}

func (s *gitHubIssueTracker) CreateWebhook(ctx context.Context, params CreateWebhookParams) (*Webhook, error) {
	events := params.Events
	if len(events) == 0 {
		events = DefaultWebhookEvents
	}

	cfg := &github.HookConfig{
		URL:         github.String(params.URL),
		ContentType: github.String("json"),
		InsecureSSL: github.String("0"),
	}
	if params.Secret != "" {
		cfg.Secret = github.String(params.Secret)
	}

	hook, _, err := s.client.Repositories.CreateHook(ctx,
		params.Repository.Owner(),
		params.Repository.Name(),
		&github.Hook{
			Name:   github.String("web"),
			Active: github.Bool(true),
			Events: events,
			Config: cfg,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhook on %s: %w", params.Repository.FullName, err)
	}

	return &Webhook{ID: hook.GetID(), URL: params.URL}, nil
}

func mapToIssue(issue *github.Issue) *model.IssueRef {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return &model.IssueRef{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		Labels: labels,
	}
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
