package model

type (
	IssueType string
	Severity  string
)

const (
	IssueTypeError       IssueType = "error"
	IssueTypePerformance IssueType = "performance"
	IssueTypeUI          IssueType = "ui"
	IssueTypeFeature     IssueType = "feature"
	IssueTypeUnknown     IssueType = "unknown"
)

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Analysis is derived from issue text only.
type Analysis struct {
	Type         IssueType `json:"type"`
	Severity     Severity  `json:"severity"`
	RelatedFiles []string  `json:"related_files"`
	Suggestions  []string  `json:"suggestions"`
}

type Strategy struct {
	Approach            string   `json:"approach"`
	Steps               []string `json:"steps"`
	AutoFixable         bool     `json:"auto_fixable"`
	RequiresHumanReview bool     `json:"requires_human_review"`
}

type FixResult struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	PullRequestCreated bool   `json:"pull_request_created"`
	BranchName         string `json:"branch_name,omitempty"`
}
