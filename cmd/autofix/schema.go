package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"basegraph.app/autofix/internal/model"
)

func (c *cli) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(model.SettingsSchema())
		},
	}
}
