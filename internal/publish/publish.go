// Package publish stages, commits and pushes the exported file with the git
// executable.
//
// Write operations run the git binary found on PATH. go-git is used only for
// read-only inspection of the repository (clean-tree check, doctor).
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrToolNotFound means the version-control executable is not on PATH.
	// Errors carrying it also match ErrPublishFailed.
	ErrToolNotFound = errors.New("version-control tool not found")
	// ErrNothingToPublish means the working tree had no changes to commit.
	ErrNothingToPublish = errors.New("nothing to publish")
	// ErrPublishFailed is matched by every failed stage, commit or push.
	ErrPublishFailed = errors.New("publish failed")
)

// CommandError reports a failed git invocation together with its output.
type CommandError struct {
	Op     string
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", e.Op, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPublishFailed.
func (e *CommandError) Is(target error) bool { return target == ErrPublishFailed }

// Executor runs an external command in dir and returns its combined output.
type Executor interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

// Run implements Executor.
func (ExecExecutor) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// Publisher commits and pushes changes in a working tree.
type Publisher struct {
	// Tool is the git executable name or path. Defaults to "git".
	Tool string
	// Dir is the working directory git runs in. Defaults to ".".
	Dir string
	// Paths are staged with "git add". Defaults to ".".
	Paths []string
	// Remote and Branch are passed to "git push" when set.
	Remote string
	Branch string
	// SkipClean skips the commit when the working tree has no changes.
	SkipClean bool

	Executor Executor
	LookPath func(file string) (string, error)
	Logger   zerolog.Logger
}

// New returns a Publisher that runs git in dir.
func New(dir string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		Tool:     "git",
		Dir:      dir,
		Executor: ExecExecutor{},
		LookPath: exec.LookPath,
		Logger:   logger,
	}
}

// Publish stages, commits with message, and pushes. Operations run strictly
// in that order and stop at the first failure; nothing is rolled back.
func (p *Publisher) Publish(ctx context.Context, message string) error {
	tool := p.Tool
	if tool == "" {
		tool = "git"
	}
	dir := p.Dir
	if dir == "" {
		dir = "."
	}
	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	executor := p.Executor
	if executor == nil {
		executor = ExecExecutor{}
	}

	bin, err := lookPath(tool)
	if err != nil {
		return fmt.Errorf("%w: %w: %s is not on PATH", ErrPublishFailed, ErrToolNotFound, tool)
	}

	if p.SkipClean {
		clean, err := IsClean(dir)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
		if clean {
			return ErrNothingToPublish
		}
	}

	paths := p.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	pushArgs := []string{"push"}
	if p.Remote != "" {
		pushArgs = append(pushArgs, p.Remote)
		if p.Branch != "" {
			pushArgs = append(pushArgs, p.Branch)
		}
	}

	steps := []struct {
		op   string
		args []string
	}{
		{"add", append([]string{"add", "--"}, paths...)},
		{"commit", []string{"commit", "-m", message}},
		{"push", pushArgs},
	}

	for _, step := range steps {
		p.Logger.Debug().Str("op", step.op).Strs("args", step.args).Msg("running git")
		out, err := executor.Run(ctx, dir, bin, step.args...)
		if err != nil {
			return &CommandError{Op: step.op, Args: step.args, Output: out, Err: err}
		}
	}
	return nil
}
