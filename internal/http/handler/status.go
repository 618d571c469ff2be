package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/autofix/internal/model"
)

// QueueSnapshot is the read-only view of the admission queue.
type QueueSnapshot interface {
	Active() []model.ProcessingRecord
	PendingCount() int
}

type StatusHandler struct {
	queue QueueSnapshot
}

func NewStatusHandler(queue QueueSnapshot) *StatusHandler {
	return &StatusHandler{queue: queue}
}

type activeIssue struct {
	IssueKey  string    `json:"issue_key"`
	RunID     int64     `json:"run_id,string"`
	StartedAt time.Time `json:"started_at"`
	Forced    bool      `json:"forced"`
}

func (h *StatusHandler) Get(c *gin.Context) {
	active := h.queue.Active()
	issues := make([]activeIssue, 0, len(active))
	for _, r := range active {
		issues = append(issues, activeIssue{
			IssueKey:  r.IssueID,
			RunID:     r.RunID,
			StartedAt: r.StartTime,
			Forced:    r.Forced,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"active":  len(active),
		"pending": h.queue.PendingCount(),
		"issues":  issues,
	})
}
