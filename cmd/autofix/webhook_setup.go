package main

import (
	"fmt"

	"github.com/spf13/cobra"

	issue_tracker "basegraph.app/autofix/internal/service/issue_tracker"
)

func (c *cli) webhookSetupCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "webhook-setup <owner> <repo>",
		Short: "Create the repository webhook on GitHub",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, err := parseRepository(args[0] + "/" + args[1])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig(true)
			if err != nil {
				return err
			}
			l := c.newLogger(cfg)

			if url == "" {
				settings, err := c.settingsStore(cfg, l).Load(ctx)
				if err != nil {
					return err
				}
				url = fmt.Sprintf("http://localhost:%d%s/github-webhook", settings.WebhookPort, cfg.BasePath)
			}

			hook, err := issue_tracker.NewGitHubIssueTracker(cfg.GitHub.Token).CreateWebhook(ctx, issue_tracker.CreateWebhookParams{
				Repository: repo,
				URL:        url,
				Secret:     cfg.GitHub.WebhookSecret,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Webhook %d created for %s -> %s\n", hook.ID, repo.FullName, hook.URL)
			if !cfg.GitHub.SignatureRequired() {
				fmt.Fprintln(c.out, "Warning: GITHUB_WEBHOOK_SECRET is not set; deliveries will not be signed.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Public webhook URL (default: http://localhost:<port><base>/github-webhook)")
	return cmd
}
