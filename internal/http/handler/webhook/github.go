package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"

	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/internal/mapper"
	"basegraph.app/autofix/internal/service"
	"basegraph.app/autofix/internal/store"
)

const (
	headerEvent     = "X-GitHub-Event"
	headerDelivery  = "X-GitHub-Delivery"
	headerSignature = "X-Hub-Signature-256"
)

type GitHubWebhookHandler struct {
	secret     []byte
	deliveries store.DeliveryStore
	mapper     mapper.EventMapper
	dispatcher service.EventDispatcher
}

// NewGitHubWebhookHandler builds the handler. An empty secret disables
// signature checks; a nil delivery store disables replay protection.
func NewGitHubWebhookHandler(secret string, deliveries store.DeliveryStore, mapper mapper.EventMapper, dispatcher service.EventDispatcher) *GitHubWebhookHandler {
	return &GitHubWebhookHandler{
		secret:     []byte(secret),
		deliveries: deliveries,
		mapper:     mapper,
		dispatcher: dispatcher,
	}
}

func (h *GitHubWebhookHandler) HandleEvent(c *gin.Context) {
	eventName := c.GetHeader(headerEvent)
	deliveryID := c.GetHeader(headerDelivery)

	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		DeliveryID: optional(deliveryID),
		EventType:  optional(eventName),
		Component:  "autofix.webhook",
	})

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read webhook body", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if len(h.secret) > 0 {
		if err := github.ValidateSignature(c.GetHeader(headerSignature), body, h.secret); err != nil {
			slog.WarnContext(ctx, "webhook signature rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
	}

	if h.deliveries != nil && deliveryID != "" {
		duplicate, err := h.deliveries.MarkSeen(ctx, deliveryID)
		if err != nil {
			slog.WarnContext(ctx, "delivery dedupe unavailable", "error", err)
		} else if duplicate {
			slog.InfoContext(ctx, "duplicate delivery ignored")
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
	}

	event, err := h.mapper.Map(ctx, eventName, body)
	if err != nil {
		if errors.Is(err, mapper.ErrUnsupportedEvent) {
			slog.DebugContext(ctx, "unsupported github event, ignoring")
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		slog.ErrorContext(ctx, "failed to decode github event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	result := h.dispatcher.Dispatch(ctx, event)

	slog.InfoContext(ctx, "github webhook processed",
		"action", event.Action,
		"repository", event.Repository.FullName,
		"issue_number", event.Issue.Number,
		"enqueued", result.Enqueued,
		"admission", result.Admission,
		"reason", result.Reason,
	)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
