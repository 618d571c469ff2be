package pipeline

import (
	"fmt"
	"strings"

	"basegraph.app/autofix/internal/model"
)

const (
	LabelInProgress = "auto-fix-in-progress"
	LabelCompleted  = "auto-fix-completed"
	LabelAttempted  = "auto-fix-attempted"
	LabelError      = "auto-fix-error"
)

const humanReviewMessage = "Issue requires human review; no automatic fix was attempted."

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// RenderReport builds the summary comment posted after a pipeline run.
func RenderReport(record model.ProcessingRecord, analysis model.Analysis, strategy model.Strategy, result model.FixResult) string {
	var b strings.Builder

	b.WriteString("## 🤖 Auto-fix Analysis\n\n")
	fmt.Fprintf(&b, "**Issue Type:** %s\n", analysis.Type)
	fmt.Fprintf(&b, "**Severity:** %s\n\n", analysis.Severity)

	if len(analysis.RelatedFiles) > 0 {
		b.WriteString("### Related Files\n")
		for _, f := range analysis.RelatedFiles {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}

	if len(analysis.Suggestions) > 0 {
		b.WriteString("### Suggestions\n")
		for _, s := range analysis.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "### Strategy: %s\n", strategy.Approach)
	for i, step := range strategy.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\n**Auto-fixable:** %s\n", yesNo(strategy.AutoFixable))
	fmt.Fprintf(&b, "**Requires human review:** %s\n\n", yesNo(strategy.RequiresHumanReview))

	b.WriteString("### Result\n")
	if result.Success {
		b.WriteString("✅ Fix implemented successfully\n")
	} else {
		b.WriteString("⚠️ Automatic fix not applied\n")
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", result.Message)
	}
	if result.BranchName != "" {
		fmt.Fprintf(&b, "\n**Branch:** `%s`\n", result.BranchName)
	}
	if result.PullRequestCreated {
		b.WriteString("**Pull request:** created\n")
	}

	fmt.Fprintf(&b, "\n---\n*Generated by autofix (run %d)*\n", record.RunID)
	return b.String()
}

// RenderError builds the comment posted when a run aborts.
func RenderError(record model.ProcessingRecord, err error) string {
	var b strings.Builder
	b.WriteString("## ❌ Auto-fix error\n\n")
	b.WriteString("An error occurred while processing this issue:\n\n")
	fmt.Fprintf(&b, "```\n%s\n```\n", err.Error())
	fmt.Fprintf(&b, "\n---\n*Generated by autofix (run %d)*\n", record.RunID)
	return b.String()
}
