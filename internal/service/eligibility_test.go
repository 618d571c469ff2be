package service_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/service"
)

var _ = Describe("ShouldProcess", func() {
	var (
		settings model.Settings
		repo     model.Repository
	)

	BeforeEach(func() {
		settings = model.DefaultSettings()
		repo = model.Repository{FullName: "acme/app"}
	})

	It("accepts an issue carrying an auto-fix label", func() {
		issue := model.IssueRef{Number: 1, Title: "Tidy the README", Labels: []string{"good first issue"}}
		Expect(service.ShouldProcess(issue, repo, settings)).To(BeTrue())
	})

	It("lets ignored labels win over auto-fix labels", func() {
		issue := model.IssueRef{Number: 1, Title: "Crash on save", Labels: []string{"bug", "wontfix"}}
		Expect(service.ShouldProcess(issue, repo, settings)).To(BeFalse())
	})

	It("rejects issues without labels or keywords", func() {
		issue := model.IssueRef{Number: 1, Title: "Update docs", Body: "The install section is outdated."}
		Expect(service.ShouldProcess(issue, repo, settings)).To(BeFalse())
	})

	It("rejects keyword matches without the bug label", func() {
		issue := model.IssueRef{Number: 1, Title: "Login is broken"}
		Expect(service.ShouldProcess(issue, repo, settings)).To(BeFalse())
	})

	It("accepts keyword matches with the literal bug label even when auto-fix labels exclude it", func() {
		settings.AutoFixLabels = []string{"auto-fix"}
		issue := model.IssueRef{Number: 1, Title: "Upload is not working", Labels: []string{"bug"}}
		Expect(service.ShouldProcess(issue, repo, settings)).To(BeTrue())
	})

	It("matches keywords case-insensitively in the body", func() {
		settings.AutoFixLabels = []string{}
		issue := model.IssueRef{Number: 1, Title: "Checkout", Body: "The page CRASHES on submit", Labels: []string{"bug"}}
		Expect(service.ShouldProcess(issue, repo, settings)).To(BeTrue())
	})

	Context("with a repository allow-list", func() {
		BeforeEach(func() {
			settings.Repositories = []string{"acme/other"}
		})

		It("rejects repositories outside the list", func() {
			issue := model.IssueRef{Number: 1, Labels: []string{"auto-fix"}}
			Expect(service.ShouldProcess(issue, repo, settings)).To(BeFalse())
		})

		It("accepts listed repositories", func() {
			issue := model.IssueRef{Number: 1, Labels: []string{"auto-fix"}}
			Expect(service.ShouldProcess(issue, model.Repository{FullName: "acme/other"}, settings)).To(BeTrue())
		})
	})
})

var _ = Describe("HasManualTrigger", func() {
	DescribeTable("detects the trigger anywhere in the comment",
		func(body string, expected bool) {
			Expect(service.HasManualTrigger(body)).To(Equal(expected))
		},
		Entry("bare command", "/auto-fix", true),
		Entry("inline", "please /auto-fix this", true),
		Entry("absent", "auto fix please", false),
		Entry("empty", "", false),
	)
})

var _ = Describe("TriggersOnLabel", func() {
	DescribeTable("only configured labels start a run",
		func(label string, expected bool) {
			Expect(service.TriggersOnLabel(label, model.DefaultSettings())).To(Equal(expected))
		},
		Entry("configured label", "auto-fix", true),
		Entry("another configured label", "good first issue", true),
		Entry("pipeline status label", "auto-fix-attempted", false),
		Entry("error status label", service.StatusLabelPrefix+"error", false),
		Entry("unlisted label", "docs", false),
		Entry("empty", "", false),
	)

	It("ignores status labels that were added to the configured list", func() {
		settings := model.DefaultSettings()
		settings.AutoFixLabels = append(settings.AutoFixLabels, "auto-fix-completed")
		Expect(service.TriggersOnLabel("auto-fix-completed", settings)).To(BeFalse())
	})
})
