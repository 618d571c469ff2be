package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

type CommandRunner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecCommandRunner runs commands as subprocesses. There is no timeout beyond
// the caller's context.
type ExecCommandRunner struct{}

func (r ExecCommandRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	command := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		command.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		command.Env = append(os.Environ(), cmd.Env...)
	}
	out, err := command.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("running %s: %w", cmd.Name, err)
	}
	return out, nil
}

// ParseCommandLine splits a configured command such as "npx claude-flow@alpha sparc"
// into an executable and leading arguments.
func ParseCommandLine(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

func (c Command) with(args ...string) Command {
	out := c
	out.Args = append(append([]string{}, c.Args...), args...)
	return out
}
