package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"basegraph.app/autofix/internal/store"
)

func (c *cli) addRepoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-repo <owner/repo>",
		Short: "Add a repository to the allow-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig(false)
			if err != nil {
				return err
			}

			settings, err := c.settingsStore(cfg, c.newLogger(cfg)).Configure(cmd.Context(), store.ConfigureParams{
				Repository: &repo.FullName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Repository %s added (%d configured)\n", repo.FullName, len(settings.Repositories))
			return nil
		},
	}
}
