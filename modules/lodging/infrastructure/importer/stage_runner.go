package importer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// StageKind names one independently triggerable import kind.
type StageKind string

const (
	KindReservations StageKind = "reservations"
	KindDaily        StageKind = "daily"
	KindQuotas       StageKind = "quotas"
)

// Kinds lists the stage kinds in their execution order.
func Kinds() []StageKind {
	return []StageKind{KindReservations, KindDaily, KindQuotas}
}

func ParseKind(s string) (StageKind, error) {
	switch StageKind(s) {
	case KindReservations, KindDaily, KindQuotas:
		return StageKind(s), nil
	default:
		return "", fmt.Errorf("unknown import kind %q (expected reservations|daily|quotas)", s)
	}
}

// StageResult carries the untruncated outcome of one external import task.
type StageResult struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

func (r *StageResult) Failed() bool {
	return r.ExitStatus != 0
}

// Combined returns stdout followed by stderr, for token scanning.
func (r *StageResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner invokes the external import tasks.
type Runner interface {
	RunStage(ctx context.Context, kind StageKind, from, to time.Time) (*StageResult, error)
	RunProduction(ctx context.Context, from, to time.Time, dryRun bool) (*StageResult, error)
}

// Commands holds the argv of each external task.
type Commands struct {
	Reservations []string
	Daily        []string
	Quotas       []string
	Production   []string
	DryRunFlag   string
}

// CommandRunner shells out to the configured import tasks, passing the date
// range as positional YYYY-MM-DD arguments.
type CommandRunner struct {
	commands Commands
	logger   *logrus.Entry
}

func NewCommandRunner(commands Commands, logger *logrus.Entry) *CommandRunner {
	return &CommandRunner{commands: commands, logger: logger}
}

func (r *CommandRunner) RunStage(ctx context.Context, kind StageKind, from, to time.Time) (*StageResult, error) {
	var argv []string
	switch kind {
	case KindReservations:
		argv = r.commands.Reservations
	case KindDaily:
		argv = r.commands.Daily
	case KindQuotas:
		argv = r.commands.Quotas
	default:
		return nil, fmt.Errorf("unknown import kind %q", kind)
	}
	return r.run(ctx, string(kind), argv, from, to)
}

func (r *CommandRunner) RunProduction(ctx context.Context, from, to time.Time, dryRun bool) (*StageResult, error) {
	argv := r.commands.Production
	if dryRun {
		// Without a flag the invocation would commit for real.
		if r.commands.DryRunFlag == "" {
			return nil, fmt.Errorf("dry run requested but no dry-run flag configured")
		}
		argv = append(append([]string{}, argv...), r.commands.DryRunFlag)
	}
	task := "production"
	if dryRun {
		task = "dry-run"
	}
	return r.run(ctx, task, argv, from, to)
}

func (r *CommandRunner) run(ctx context.Context, task string, argv []string, from, to time.Time) (*StageResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("no command configured for task %q", task)
	}

	args := append(append([]string{}, argv[1:]...), from.Format("2006-01-02"), to.Format("2006-01-02"))
	cmd := exec.CommandContext(ctx, argv[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.logger != nil {
		r.logger.WithField("task", task).Debugf("running %s %v", argv[0], args)
	}

	err := cmd.Run()
	result := &StageResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitStatus = exitErr.ExitCode()
			return result, nil
		}
		return nil, errors.Wrapf(err, "failed to start task %q", task)
	}
	return result, nil
}
