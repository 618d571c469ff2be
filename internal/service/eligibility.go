package service

import (
	"slices"
	"strings"

	"basegraph.app/autofix/internal/model"
)

// ManualTrigger in a comment body forces processing regardless of eligibility.
const ManualTrigger = "/auto-fix"

// bugKeywords are matched against the lower-cased title and body.
var bugKeywords = []string{"error", "bug", "broken", "fails", "not working", "crash"}

// ShouldProcess decides whether an issue enters the pipeline.
//
// Ignored labels always win, even over auto-fix labels. Without an auto-fix
// label the issue qualifies only when its text mentions a failure keyword and
// it carries the literal "bug" label; that branch does not consult
// AutoFixLabels.
func ShouldProcess(issue model.IssueRef, repo model.Repository, settings model.Settings) bool {
	if !settings.AllowsRepository(repo.FullName) {
		return false
	}

	if hasAnyLabel(issue, settings.IgnoredLabels) {
		return false
	}

	if hasAnyLabel(issue, settings.AutoFixLabels) {
		return true
	}

	text := issue.Text()
	for _, kw := range bugKeywords {
		if strings.Contains(text, kw) {
			return issue.HasLabel("bug")
		}
	}

	return false
}

// StatusLabelPrefix marks the labels the pipeline puts on issues itself.
const StatusLabelPrefix = "auto-fix-"

// TriggersOnLabel reports whether adding label should start a run. The
// pipeline's own status labels never do.
func TriggersOnLabel(label string, settings model.Settings) bool {
	if label == "" || strings.HasPrefix(label, StatusLabelPrefix) {
		return false
	}
	return slices.Contains(settings.AutoFixLabels, label)
}

func HasManualTrigger(commentBody string) bool {
	return strings.Contains(commentBody, ManualTrigger)
}

func hasAnyLabel(issue model.IssueRef, labels []string) bool {
	for _, l := range labels {
		if issue.HasLabel(l) {
			return true
		}
	}
	return false
}
