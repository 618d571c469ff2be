package model

import (
	"fmt"
	"strings"
	"time"
)

// IssueRef is an immutable snapshot of a GitHub issue taken from an inbound event.
type IssueRef struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

func (i IssueRef) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Text is the lower-cased title and body, used by keyword heuristics.
func (i IssueRef) Text() string {
	return strings.ToLower(i.Title + " " + i.Body)
}

type Repository struct {
	FullName string `json:"full_name"` // "owner/repo"
}

func (r Repository) Owner() string {
	owner, _, _ := strings.Cut(r.FullName, "/")
	return owner
}

func (r Repository) Name() string {
	_, name, _ := strings.Cut(r.FullName, "/")
	return name
}

// IssueKey identifies an issue across repositories: "owner/repo#42".
func IssueKey(repo Repository, number int) string {
	return fmt.Sprintf("%s#%d", repo.FullName, number)
}

// ProcessingRecord is owned by the admission queue while an issue is active.
type ProcessingRecord struct {
	IssueID    string     `json:"issue_id"`
	RunID      int64      `json:"run_id"`
	StartTime  time.Time  `json:"start_time"`
	Issue      IssueRef   `json:"issue"`
	Repository Repository `json:"repository"`
	Forced     bool       `json:"forced"`
}
