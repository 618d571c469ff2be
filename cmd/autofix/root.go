package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/core/config"
	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/store"
)

// cli carries state shared by all subcommands.
type cli struct {
	settingsPath string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "autofix",
		Short: "Automated GitHub issue triage and fixing",
		Long: `autofix receives GitHub issue webhooks, filters issues that look fixable,
analyzes them, attempts a fix through an external agent coordinator
and reports the outcome back on the issue.`,
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.settingsPath, "config", "", "Path to the settings file (default: $AUTOFIX_SETTINGS_PATH or .autofix/config.json)")

	root.AddCommand(
		c.startCmd(),
		c.statusCmd(),
		c.addRepoCmd(),
		c.configureCmd(),
		c.testIssueCmd(),
		c.webhookSetupCmd(),
		c.logsCmd(),
		c.schemaCmd(),
	)
	return root
}

// loadConfig reads the process environment. Commands that talk to GitHub
// pass requireToken; the rest tolerate a missing token.
func (c *cli) loadConfig(requireToken bool) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrMissingToken) || requireToken {
			return cfg, err
		}
	}
	if c.settingsPath != "" {
		cfg.SettingsPath = c.settingsPath
	}
	return cfg, nil
}

func (c *cli) newLogger(cfg config.Config) *slog.Logger {
	return logger.New(cfg, c.errOut)
}

func (c *cli) settingsStore(cfg config.Config, l *slog.Logger) *store.LocalSettingsStore {
	return store.NewLocalSettingsStore(cfg.SettingsPath, l)
}

func parseRepository(s string) (model.Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return model.Repository{}, fmt.Errorf("repository must be owner/repo, got %q", s)
	}
	return model.Repository{FullName: owner + "/" + name}, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
