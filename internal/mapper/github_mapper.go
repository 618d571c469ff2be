package mapper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/go-github/v66/github"

	"basegraph.app/autofix/internal/model"
)

type GitHubEventMapper struct{}

func NewGitHubEventMapper() *GitHubEventMapper {
	return &GitHubEventMapper{}
}

func (m *GitHubEventMapper) Map(ctx context.Context, eventName string, body []byte) (*Event, error) {
	switch eventName {
	case "issues":
		var payload github.IssuesEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decoding issues payload: %w", err)
		}
		return &Event{
			Type:       issueEventType(payload.GetAction()),
			Action:     payload.GetAction(),
			Repository: model.Repository{FullName: payload.GetRepo().GetFullName()},
			Issue:      toIssueRef(payload.GetIssue()),
			Sender:     payload.GetSender().GetLogin(),
			Label:      payload.GetLabel().GetName(),
		}, nil

	case "issue_comment":
		var payload github.IssueCommentEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decoding issue_comment payload: %w", err)
		}
		eventType := EventCommentUpdated
		if payload.GetAction() == "created" {
			eventType = EventCommentCreated
		}
		return &Event{
			Type:        eventType,
			Action:      payload.GetAction(),
			Repository:  model.Repository{FullName: payload.GetRepo().GetFullName()},
			Issue:       toIssueRef(payload.GetIssue()),
			CommentBody: payload.GetComment().GetBody(),
			Sender:      payload.GetSender().GetLogin(),
		}, nil

	case "push":
		var payload github.PushEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decoding push payload: %w", err)
		}
		return &Event{
			Type:        EventPush,
			Repository:  model.Repository{FullName: payload.GetRepo().GetFullName()},
			Sender:      payload.GetSender().GetLogin(),
			Ref:         payload.GetRef(),
			CommitCount: len(payload.Commits),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, eventName)
}

func issueEventType(action string) CanonicalEventType {
	switch action {
	case "opened":
		return EventIssueOpened
	case "labeled":
		return EventIssueLabeled
	}
	return EventIssueUpdated
}

func toIssueRef(issue *github.Issue) model.IssueRef {
	if issue == nil {
		return model.IssueRef{}
	}
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return model.IssueRef{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		Labels: labels,
	}
}
