package pipeline

import (
	"slices"

	"basegraph.app/autofix/internal/model"
)

// maxAutoFixFiles caps how many related files an error fix may touch.
const maxAutoFixFiles = 3

type strategyTemplate struct {
	approach            string
	steps               []string
	requiresHumanReview bool
	autoFixable         func(model.Analysis) bool
}

func never(model.Analysis) bool  { return false }
func always(model.Analysis) bool { return true }

var strategyTemplates = map[model.IssueType]strategyTemplate{
	model.IssueTypeError: {
		approach: "Debug and fix error",
		steps: []string{
			"Reproduce the error",
			"Identify the root cause",
			"Implement the fix",
			"Add a regression test",
		},
		autoFixable: func(a model.Analysis) bool { return len(a.RelatedFiles) <= maxAutoFixFiles },
	},
	model.IssueTypePerformance: {
		approach: "Profile and optimize",
		steps: []string{
			"Profile the affected code path",
			"Identify bottlenecks",
			"Optimize the hot spots",
			"Benchmark before and after",
		},
		requiresHumanReview: true,
		autoFixable:         never,
	},
	model.IssueTypeUI: {
		approach: "Fix UI issue",
		steps: []string{
			"Locate the affected components",
			"Adjust styles or markup",
			"Verify rendering across breakpoints",
		},
		requiresHumanReview: true,
		autoFixable:         always,
	},
	model.IssueTypeFeature: {
		approach: "Implement feature",
		steps: []string{
			"Clarify requirements",
			"Design the change",
			"Implement with tests",
			"Update documentation",
		},
		requiresHumanReview: true,
		autoFixable:         never,
	},
	model.IssueTypeUnknown: {
		approach: "Investigate issue",
		steps: []string{
			"Gather more information from the reporter",
			"Reproduce the issue",
			"Classify and re-triage",
		},
		requiresHumanReview: true,
		autoFixable:         never,
	},
}

// Strategize maps an analysis to its fixed remediation template.
func Strategize(analysis model.Analysis) model.Strategy {
	tmpl, ok := strategyTemplates[analysis.Type]
	if !ok {
		tmpl = strategyTemplates[model.IssueTypeUnknown]
	}
	return model.Strategy{
		Approach:            tmpl.approach,
		Steps:               slices.Clone(tmpl.steps),
		AutoFixable:         tmpl.autoFixable(analysis),
		RequiresHumanReview: tmpl.requiresHumanReview,
	}
}
