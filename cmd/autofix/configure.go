package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/store"
)

func (c *cli) configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactively edit settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig(false)
			if err != nil {
				return err
			}
			st := c.settingsStore(cfg, c.newLogger(cfg))

			current, err := st.Load(ctx)
			if err != nil {
				return err
			}

			params, err := promptConfigure(c.in, c.out, current)
			if err != nil {
				return err
			}

			updated, err := st.Configure(ctx, params)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "\nSettings saved to %s\n", st.Path())
			fmt.Fprintf(c.out, "Enabled: %s, port %d, repositories: %d\n", yesNo(updated.Enabled), updated.WebhookPort, len(updated.Repositories))
			return nil
		},
	}
}

// promptConfigure asks one question per setting. An empty answer keeps the
// current value.
func promptConfigure(in io.Reader, out io.Writer, current model.Settings) (store.ConfigureParams, error) {
	p := &prompter{scanner: bufio.NewScanner(in), out: out}
	var params store.ConfigureParams

	if v, ok := p.yesNo("Enable auto-fix", current.Enabled); ok {
		params.Enabled = &v
	}
	if v := p.ask("Add repository (owner/repo)", ""); v != "" {
		repo, err := parseRepository(v)
		if err != nil {
			return params, err
		}
		params.Repository = &repo.FullName
	}
	if v := p.ask("Webhook port", strconv.Itoa(current.WebhookPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("invalid port %q", v)
		}
		params.Port = &port
	}
	if v, ok := p.yesNo("Enable SPARC analysis", current.Sparc.Enabled); ok {
		params.SparcEnabled = &v
	}
	if v, ok := p.yesNo("Enable swarm fixes", current.Swarm.Enabled); ok {
		params.SwarmEnabled = &v
	}
	if v := p.ask("Auto-fix labels (comma separated)", strings.Join(current.AutoFixLabels, ", ")); v != "" {
		params.AutoFixLabels = splitList(v)
	}

	return params, p.scanner.Err()
}

type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// ask returns the trimmed answer, or "" on an empty line or end of input.
func (p *prompter) ask(question, current string) string {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, current)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	if !p.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}

func (p *prompter) yesNo(question string, current bool) (bool, bool) {
	switch strings.ToLower(p.ask(question+" (y/n)", yesNo(current))) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
