package pipeline

import (
	"context"
	"log/slog"
	"regexp"

	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
)

const maxBackendSuggestion = 2000

type typeIndicator struct {
	issueType model.IssueType
	pattern   *regexp.Regexp
}

// Checked in order; the first match wins.
var typeIndicators = []typeIndicator{
	{model.IssueTypeError, regexp.MustCompile(`(?i)(error|exception|crash|fail|broken|undefined|stack ?trace)`)},
	{model.IssueTypePerformance, regexp.MustCompile(`(?i)(slow|performance|memory|leak|timeout|latency|\blag\b|cpu)`)},
	{model.IssueTypeUI, regexp.MustCompile(`(?i)(\bui\b|css|style|layout|display|button|render|alignment|responsive)`)},
	{model.IssueTypeFeature, regexp.MustCompile(`(?i)(feature|enhancement|add support|request|would be nice|proposal)`)},
}

var severityByType = map[model.IssueType]model.Severity{
	model.IssueTypeError:       model.SeverityHigh,
	model.IssueTypePerformance: model.SeverityMedium,
	model.IssueTypeUI:          model.SeverityLow,
	model.IssueTypeFeature:     model.SeverityLow,
	model.IssueTypeUnknown:     model.SeverityMedium,
}

var baseSuggestions = map[model.IssueType][]string{
	model.IssueTypeError: {
		"Check the stack trace for the failing call site",
		"Add a regression test that reproduces the error",
	},
	model.IssueTypePerformance: {
		"Profile the slow code path before changing it",
		"Look for repeated queries or unnecessary re-renders",
	},
	model.IssueTypeUI: {
		"Verify the fix across supported browsers and breakpoints",
	},
	model.IssueTypeFeature: {
		"Confirm acceptance criteria with the reporter",
	},
	model.IssueTypeUnknown: {
		"Ask the reporter for reproduction steps",
	},
}

var filePattern = regexp.MustCompile(`[\w\-/.]+\.(js|ts|jsx|tsx|py|java|go|rs|cpp|c|h|css|html|json|yml|yaml|md)\b`)

// Classify returns the issue type by keyword presence.
func Classify(text string) model.IssueType {
	for _, ind := range typeIndicators {
		if ind.pattern.MatchString(text) {
			return ind.issueType
		}
	}
	return model.IssueTypeUnknown
}

// ExtractFiles returns file-like tokens in order of first appearance.
func ExtractFiles(text string) []string {
	matches := filePattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		files = append(files, m)
	}
	return files
}

// Analyze derives an Analysis from the issue text. When an analysis backend
// is present its output is appended as a suggestion; backend failures are
// logged to l and skipped.
func Analyze(ctx context.Context, issue model.IssueRef, repo model.Repository, analysisBackend backend.AnalysisBackend, l *slog.Logger) model.Analysis {
	text := issue.Title + "\n" + issue.Body
	issueType := Classify(text)

	analysis := model.Analysis{
		Type:         issueType,
		Severity:     severityByType[issueType],
		RelatedFiles: ExtractFiles(text),
		Suggestions:  append([]string{}, baseSuggestions[issueType]...),
	}

	if analysisBackend == nil {
		return analysis
	}

	out, err := analysisBackend.Analyze(ctx, issue, repo)
	if err != nil {
		if l == nil {
			l = slog.Default()
		}
		l.WarnContext(ctx, "analysis backend failed, continuing without it", "error", err)
		return analysis
	}
	if out != "" {
		analysis.Suggestions = append(analysis.Suggestions, "SPARC analysis: "+logger.Truncate(out, maxBackendSuggestion))
	}

	return analysis
}
