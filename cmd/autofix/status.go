package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/autofix/core/config"
	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/model"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show settings and backend availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig(false)
			if err != nil {
				return err
			}
			l := c.newLogger(cfg)

			st := c.settingsStore(cfg, l)
			settings, err := st.Load(ctx)
			if err != nil {
				return err
			}

			b := setupBackends(ctx, cfg, settings, backend.ExecCommandRunner{}, l)
			printStatus(c.out, st.Path(), cfg, settings, b)
			return nil
		},
	}
}

func printStatus(w io.Writer, path string, cfg config.Config, settings model.Settings, b backends) {
	repos := "all"
	if len(settings.Repositories) > 0 {
		repos = strings.Join(settings.Repositories, ", ")
	}
	token := "missing"
	if cfg.GitHub.Token != "" {
		token = "configured"
	}
	secret := "not set"
	if cfg.GitHub.SignatureRequired() {
		secret = "configured"
	}

	fmt.Fprintln(w, "=== Auto-fix Status ===")
	fmt.Fprintf(w, "Enabled:          %s\n", yesNo(settings.Enabled))
	fmt.Fprintf(w, "Settings file:    %s\n", path)
	fmt.Fprintf(w, "Repositories:     %s\n", repos)
	fmt.Fprintf(w, "Auto-fix labels:  %s\n", strings.Join(settings.AutoFixLabels, ", "))
	fmt.Fprintf(w, "Ignored labels:   %s\n", strings.Join(settings.IgnoredLabels, ", "))
	fmt.Fprintf(w, "Max concurrent:   %d\n", settings.MaxConcurrentIssues)
	fmt.Fprintf(w, "Webhook port:     %d\n", settings.WebhookPort)
	fmt.Fprintf(w, "Webhook path:     %s/github-webhook\n", cfg.BasePath)
	fmt.Fprintf(w, "SPARC:            %s (mode %s)\n", b.sparcStatus, settings.Sparc.Mode)
	fmt.Fprintf(w, "Swarm:            %s (%s, %d agents)\n", b.swarmStatus, settings.Swarm.Topology, settings.Swarm.MaxAgents)
	fmt.Fprintf(w, "GitHub token:     %s\n", token)
	fmt.Fprintf(w, "Webhook secret:   %s\n", secret)
}
