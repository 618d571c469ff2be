package mapper

import (
	"context"
	"errors"

	"basegraph.app/autofix/internal/model"
)

type CanonicalEventType string

const (
	EventIssueOpened    CanonicalEventType = "issue_opened"
	EventIssueLabeled   CanonicalEventType = "issue_labeled"
	EventIssueUpdated   CanonicalEventType = "issue_updated"
	EventCommentCreated CanonicalEventType = "comment_created"
	EventCommentUpdated CanonicalEventType = "comment_updated"
	EventPush           CanonicalEventType = "push"
)

// ErrUnsupportedEvent is returned for event names the relay does not act on.
// Callers acknowledge these without processing.
var ErrUnsupportedEvent = errors.New("unsupported event")

// Event is the provider-neutral view of one webhook delivery.
type Event struct {
	Type        CanonicalEventType
	Action      string
	Repository  model.Repository
	Issue       model.IssueRef
	CommentBody string
	Sender      string

	// Label is the label added by an issue labeled action.
	Label string

	// Push only.
	Ref         string
	CommitCount int
}

type EventMapper interface {
	Map(ctx context.Context, eventName string, body []byte) (*Event, error)
}
