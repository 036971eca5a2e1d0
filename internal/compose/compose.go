package compose

import (
	"context"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/driftworks/devsess/internal/errors"
	"github.com/driftworks/devsess/internal/logging"
	"github.com/driftworks/devsess/internal/system"
)

// Project scopes an orchestration invocation to one session: a unique
// project name plus the session's env and stack files. Two sessions
// never share a project name, so their containers, networks and
// volumes cannot collide.
type Project struct {
	Name      string
	EnvFile   string
	StackFile string
	Profile   string
}

// Orchestrator drives the external container-orchestration tool.
type Orchestrator struct {
	bin  string
	exec system.CommandExecutor
}

// New creates an Orchestrator for the given binary ("docker" by
// default; any compose-compatible drop-in works).
func New(bin string, exec system.CommandExecutor) *Orchestrator {
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	return &Orchestrator{bin: bin, exec: exec}
}

// baseArgs builds the compose argument prefix scoping a project.
func (o *Orchestrator) baseArgs(p Project) []string {
	args := []string{"compose", "--project-name", p.Name}
	if p.StackFile != "" {
		args = append(args, "-f", p.StackFile)
	}
	if p.EnvFile != "" {
		args = append(args, "--env-file", p.EnvFile)
	}
	return args
}

// run invokes the tool and maps failures to orchestration errors. No
// retries; retrying is a caller policy decision.
func (o *Orchestrator) run(ctx context.Context, op string, args []string) (*system.Result, error) {
	logging.Debug("invoking orchestration tool",
		"command", shellquote.Join(append([]string{o.bin}, args...)...))

	result, err := o.exec.Run(ctx, nil, o.bin, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ExitOrchestration, "failed to invoke "+o.bin, err)
	}
	if result.ExitCode != 0 {
		return nil, errors.Orchestration(op, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result, nil
}

// Up starts the project's containers in the background, optionally
// restricted to a named profile.
func (o *Orchestrator) Up(ctx context.Context, p Project) error {
	args := o.baseArgs(p)
	if p.Profile != "" {
		args = append(args, "--profile", p.Profile)
	}
	args = append(args, "up", "-d")

	_, err := o.run(ctx, "up", args)
	return err
}

// Down tears down the project's containers, networks and volumes.
// Nothing running is success, by the tool's own semantics, which makes
// Down idempotent.
func (o *Orchestrator) Down(ctx context.Context, p Project) error {
	args := append(o.baseArgs(p), "down", "--volumes", "--remove-orphans")

	_, err := o.run(ctx, "down", args)
	return err
}

// Running reports whether any container of the project is up.
func (o *Orchestrator) Running(ctx context.Context, p Project) (bool, error) {
	args := append(o.baseArgs(p), "ps", "--quiet")

	result, err := o.run(ctx, "ps", args)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result.Stdout) != "", nil
}
