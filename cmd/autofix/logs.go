package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) logsCmd() *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent processing logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// TODO: read from the OTLP log backend once a query endpoint is configured.
			fmt.Fprintf(c.out, "Log viewing is not implemented yet (requested %d lines).\n", lines)
			fmt.Fprintln(c.out, "Logs are written to stdout by `autofix start` and exported over OTLP when configured.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	return cmd
}
