package backend_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
)

type fakeRunner struct {
	commands []backend.Command
	output   string
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, cmd backend.Command) ([]byte, error) {
	f.commands = append(f.commands, cmd)
	return []byte(f.output), f.err
}

var _ = Describe("ParseCommandLine", func() {
	It("splits the executable from leading arguments", func() {
		cmd, err := backend.ParseCommandLine("npx claude-flow@alpha sparc")
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd.Name).To(Equal("npx"))
		Expect(cmd.Args).To(Equal([]string{"claude-flow@alpha", "sparc"}))
	})

	It("rejects an empty command", func() {
		_, err := backend.ParseCommandLine("   ")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SparcBackend", func() {
	var (
		runner *fakeRunner
		sparc  *backend.SparcBackend
		issue  model.IssueRef
		repo   model.Repository
	)

	BeforeEach(func() {
		runner = &fakeRunner{output: "  root cause is in auth.js  \n"}
		var err error
		sparc, err = backend.NewSparcBackend(runner, "sparc-cli", model.SparcSettings{Enabled: true, Mode: "tdd", Namespace: "ns"})
		Expect(err).NotTo(HaveOccurred())
		issue = model.IssueRef{Number: 5, Title: "Crash", Body: "details"}
		repo = model.Repository{FullName: "acme/app"}
	})

	It("invokes run with mode, prompt and namespace", func() {
		out, err := sparc.Analyze(context.Background(), issue, repo)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("root cause is in auth.js"))

		Expect(runner.commands).To(HaveLen(1))
		cmd := runner.commands[0]
		Expect(cmd.Name).To(Equal("sparc-cli"))
		Expect(cmd.Args[0:2]).To(Equal([]string{"run", "tdd"}))
		Expect(cmd.Args[2]).To(ContainSubstring("#5 in acme/app: Crash"))
		Expect(cmd.Args[3:]).To(Equal([]string{"--namespace", "ns", "--non-interactive"}))
	})

	It("wraps runner failures", func() {
		runner.err = errors.New("exit status 1")
		_, err := sparc.Analyze(context.Background(), issue, repo)
		Expect(err).To(MatchError(ContainSubstring("sparc analysis")))
	})

	It("probes with --version", func() {
		Expect(sparc.Probe(context.Background())).To(Succeed())
		Expect(runner.commands[0].Args).To(Equal([]string{"--version"}))
	})
})

var _ = Describe("SwarmBackend", func() {
	var (
		runner *fakeRunner
		swarm  *backend.SwarmBackend
		req    backend.FixRequest
	)

	BeforeEach(func() {
		runner = &fakeRunner{}
		var err error
		swarm, err = backend.NewSwarmBackend(runner, "npx claude-flow swarm", model.SwarmSettings{Topology: "mesh", MaxAgents: 5})
		Expect(err).NotTo(HaveOccurred())
		req = backend.FixRequest{
			Issue:      model.IssueRef{Number: 12},
			Repository: model.Repository{FullName: "acme/app"},
			Strategy:   model.Strategy{Approach: "Debug and fix error"},
		}
	})

	It("passes the objective and topology flags", func() {
		runner.output = "Task completed successfully\nbranch: fix/issue-12\nPull request opened"
		result, err := swarm.Fix(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeTrue())
		Expect(result.BranchName).To(Equal("fix/issue-12"))

		args := runner.commands[0].Args
		Expect(args[0:2]).To(Equal([]string{"claude-flow", "swarm"}))
		Expect(args[2]).To(Equal("Fix GitHub issue #12 in acme/app: Debug and fix error"))
		Expect(args[3:]).To(Equal([]string{"--strategy", "development", "--topology", "mesh", "--max-agents", "5", "--non-interactive"}))
	})

	It("reports failure without the success marker", func() {
		runner.output = "agents gave up"
		result, err := swarm.Fix(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeFalse())
		Expect(result.Message).To(Equal("agents gave up"))
	})

	It("returns the raw output alongside invocation errors", func() {
		runner.output = "npx: command not found"
		runner.err = errors.New("exit status 127")
		result, err := swarm.Fix(context.Background(), req)
		Expect(err).To(HaveOccurred())
		Expect(result.Success).To(BeFalse())
		Expect(result.Message).To(Equal("npx: command not found"))
	})
})

var _ = Describe("ParseFixOutput", func() {
	It("detects branch and pull request", func() {
		result := backend.ParseFixOutput("Fix applied Successfully\nbranch: auto-fix/issue-3\nCreated PR #17")
		Expect(result.Success).To(BeTrue())
		Expect(result.BranchName).To(Equal("auto-fix/issue-3"))
		Expect(result.PullRequestCreated).To(BeTrue())
	})

	It("leaves branch empty when absent", func() {
		result := backend.ParseFixOutput("done successfully")
		Expect(result.Success).To(BeTrue())
		Expect(result.BranchName).To(BeEmpty())
		Expect(result.PullRequestCreated).To(BeFalse())
	})

	DescribeTable("rejects output without an affirmative success marker",
		func(out string) {
			Expect(backend.ParseFixOutput(out).Success).To(BeFalse())
		},
		Entry("prefixed", "Fix could not be applied unsuccessfully"),
		Entry("negated", "Changes were not successfully applied"),
		Entry("absent", "agents finished"),
	)

	It("ignores negated pull request lines", func() {
		result := backend.ParseFixOutput("Completed successfully\nNo pull request created")
		Expect(result.Success).To(BeTrue())
		Expect(result.PullRequestCreated).To(BeFalse())
	})

	It("accepts a later affirmative pull request line", func() {
		result := backend.ParseFixOutput("Completed successfully\nno pull request yet\nOpened pull request #8")
		Expect(result.PullRequestCreated).To(BeTrue())
	})
})
