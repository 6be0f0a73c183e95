// Package pipeline runs the export: back up the workbook, extract the table,
// write the TSV file, and optionally publish it.
//
// The first four stages are fatal. Each failure is returned as a *StageError
// whose exit code identifies the stage. Publishing is best-effort: its error
// is logged and kept on the Result, and Run still succeeds.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/OftenOfuton/My-AZIK/internal/backup"
	"github.com/OftenOfuton/My-AZIK/internal/extract"
	"github.com/OftenOfuton/My-AZIK/internal/formats/tsv"
	"github.com/OftenOfuton/My-AZIK/internal/logging"
	"github.com/OftenOfuton/My-AZIK/internal/publish"
	"github.com/OftenOfuton/My-AZIK/internal/record"
)

// Stage identifies a pipeline step.
type Stage int

// Stages in execution order.
const (
	StageInput Stage = iota
	StageBackup
	StageExtract
	StageWrite
	StagePublish
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitError         = 1
	ExitInputMissing  = 2
	ExitBackupFailed  = 3
	ExitExtractFailed = 4
	ExitWriteFailed   = 5
)

// Sentinels matched by StageError through errors.Is.
var (
	ErrInputMissing     = errors.New("input workbook missing")
	ErrBackupFailed     = errors.New("backup failed")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrWriteFailed      = errors.New("write failed")
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageBackup:
		return "backup"
	case StageExtract:
		return "extract"
	case StageWrite:
		return "write"
	case StagePublish:
		return "publish"
	default:
		return "unknown"
	}
}

func (s Stage) sentinel() error {
	switch s {
	case StageInput:
		return ErrInputMissing
	case StageBackup:
		return ErrBackupFailed
	case StageExtract:
		return ErrExtractionFailed
	case StageWrite:
		return ErrWriteFailed
	case StagePublish:
		return publish.ErrPublishFailed
	default:
		return nil
	}
}

// ExitCode is the process exit code for a failure in this stage.
func (s Stage) ExitCode() int {
	switch s {
	case StageInput:
		return ExitInputMissing
	case StageBackup:
		return ExitBackupFailed
	case StageExtract:
		return ExitExtractFailed
	case StageWrite:
		return ExitWriteFailed
	default:
		return ExitOK
	}
}

// StageError is a failure in one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.sentinel(), e.Err)
}

// Unwrap returns the stage's underlying error.
func (e *StageError) Unwrap() error { return e.Err }

// Is matches the stage's sentinel error, e.g. ErrBackupFailed.
func (e *StageError) Is(target error) bool {
	return target == e.Stage.sentinel()
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var se *StageError
	if errors.As(err, &se) {
		if code := se.Stage.ExitCode(); code != ExitOK {
			return code
		}
	}
	return ExitError
}

// Options are the inputs of one run.
type Options struct {
	Workbook  string
	Output    string
	BackupDir string
	Table     string
	Columns   []string
	Policy    tsv.Policy
	// Publish enables the commit-and-push stage.
	Publish bool
	// CommitMessage defaults to "Update <output file name>".
	CommitMessage string
}

// Result summarises a successful run.
type Result struct {
	BackupPath string `json:"backupPath"`
	Output     string `json:"output"`
	Source     string `json:"source"`
	Rows       int    `json:"rows"`
	Published  bool   `json:"published"`
	// PublishErr is set when publishing was attempted and failed or had nothing to do.
	PublishErr error `json:"-"`
	// PublishError is PublishErr's message.
	PublishError string `json:"publishError,omitempty"`
}

// Publisher commits and pushes the working tree.
type Publisher interface {
	Publish(ctx context.Context, message string) error
}

// Runner holds the stage implementations. Zero fields use the defaults.
type Runner struct {
	Backup    func(src, dir string) (string, error)
	Extract   func(path string, q extract.Query) (*record.Set, error)
	Write     func(path string, set *record.Set, policy tsv.Policy) error
	Publisher Publisher
	Logger    zerolog.Logger
	// Out receives the human-readable progress lines. Defaults to stdout.
	Out io.Writer
}

// NewRunner returns a Runner wired to the real stages.
func NewRunner(logger zerolog.Logger, pub Publisher) *Runner {
	return &Runner{
		Backup: backup.Creator{Logger: logging.Component(logger, "backup")}.Create,
		Extract: func(path string, q extract.Query) (*record.Set, error) {
			return extract.ExtractFile(path, q, logging.Component(logger, "extract"))
		},
		Write:     tsv.WriteFile,
		Publisher: pub,
		Logger:    logging.Component(logger, "pipeline"),
		Out:       os.Stdout,
	}
}

// DefaultCommitMessage returns the commit message used for an output path.
func DefaultCommitMessage(output string) string {
	return "Update " + filepath.Base(output)
}

// Run executes the pipeline once.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if info, err := os.Stat(opts.Workbook); err != nil || info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is a directory", opts.Workbook)
		}
		return nil, &StageError{Stage: StageInput, Err: fmt.Errorf("input file not found: %s: %w", opts.Workbook, err)}
	}

	backupFn := r.Backup
	if backupFn == nil {
		backupFn = backup.Creator{Logger: r.Logger}.Create
	}
	backupPath, err := backupFn(opts.Workbook, opts.BackupDir)
	if err != nil {
		return nil, &StageError{Stage: StageBackup, Err: err}
	}
	r.Logger.Debug().Str("path", backupPath).Msg("backup created")
	fmt.Fprintf(out, "%s backup: %s\n", green("✓"), backupPath)

	extractFn := r.Extract
	if extractFn == nil {
		extractFn = func(path string, q extract.Query) (*record.Set, error) {
			return extract.ExtractFile(path, q, r.Logger)
		}
	}
	set, err := extractFn(opts.Workbook, extract.Query{Table: opts.Table, Columns: opts.Columns})
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	r.Logger.Debug().Str("source", set.Source).Int("rows", set.Len()).Msg("rows extracted")

	writeFn := r.Write
	if writeFn == nil {
		writeFn = tsv.WriteFile
	}
	if err := writeFn(opts.Output, set, opts.Policy); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}
	fmt.Fprintf(out, "%s tsv: %s (%d rows from %s)\n", green("✓"), opts.Output, set.Len(), set.Source)

	result := &Result{
		BackupPath: backupPath,
		Output:     opts.Output,
		Source:     set.Source,
		Rows:       set.Len(),
	}

	if !opts.Publish || r.Publisher == nil {
		return result, nil
	}

	message := opts.CommitMessage
	if message == "" {
		message = DefaultCommitMessage(opts.Output)
	}
	switch err := r.Publisher.Publish(ctx, message); {
	case err == nil:
		result.Published = true
		fmt.Fprintf(out, "%s pushed: %s\n", green("✓"), message)
	case errors.Is(err, publish.ErrNothingToPublish):
		result.PublishErr = err
		result.PublishError = err.Error()
		fmt.Fprintf(out, "%s nothing to publish\n", yellow("-"))
	default:
		result.PublishErr = &StageError{Stage: StagePublish, Err: err}
		result.PublishError = result.PublishErr.Error()
		r.Logger.Error().Err(err).Msg("publish failed, check the repository manually")
	}

	return result, nil
}
