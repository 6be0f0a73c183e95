// Package doctor provides the "romantable doctor" command for checking that
// an export can run.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/config"
	"github.com/OftenOfuton/My-AZIK/internal/output"
	"github.com/OftenOfuton/My-AZIK/internal/publish"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the workbook, backup directory and git setup",
		Long:  "Run diagnostic checks to verify an export and publish can run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			checks := RunChecks(a.Config, exec.LookPath)
			out := cmd.OutOrStdout()

			if a.JSON {
				if err := output.JSON(out, checks); err != nil {
					return err
				}
				return failures(checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Fprintln(out, "romantable doctor")
			fmt.Fprintln(out, "=================")
			fmt.Fprintln(out)

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Fprintf(out, "  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)
			return failures(checks)
		},
	}
}

func failures(checks []Check) error {
	n := 0
	for _, c := range checks {
		if c.Status == "error" {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d check(s) failed", n)
	}
	return nil
}

// RunChecks inspects the environment an export runs in. lookPath finds the
// git executable.
func RunChecks(cfg *config.Config, lookPath func(string) (string, error)) []Check {
	var checks []Check

	checks = append(checks, Check{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	if err := config.Err(cfg.Validate()); err != nil {
		checks = append(checks, Check{Name: "Configuration", Status: "error", Message: strings.ReplaceAll(err.Error(), "\n", "; ")})
	} else {
		checks = append(checks, Check{Name: "Configuration", Status: "ok", Message: "valid"})
	}

	// Workbook
	if info, err := os.Stat(cfg.Excel); err != nil {
		checks = append(checks, Check{Name: "Workbook", Status: "error", Message: fmt.Sprintf("%s not found", cfg.Excel)})
	} else if info.IsDir() {
		checks = append(checks, Check{Name: "Workbook", Status: "error", Message: fmt.Sprintf("%s is a directory", cfg.Excel)})
	} else {
		checks = append(checks, Check{Name: "Workbook", Status: "ok", Message: cfg.Excel})
	}

	checks = append(checks, checkBackupDir(cfg.BackupDir))
	checks = append(checks, checkOutputDir(cfg.Output))

	if !cfg.Publish.Enabled {
		checks = append(checks, Check{Name: "Publish", Status: "ok", Message: "disabled"})
		return checks
	}

	// Git
	if path, err := lookPath("git"); err == nil {
		checks = append(checks, Check{Name: "Git", Status: "ok", Message: path})
	} else {
		checks = append(checks, Check{Name: "Git", Status: "warning", Message: "Not found in PATH, publishing will fail"})
	}

	checks = append(checks, checkRepository(filepath.Dir(cfg.Output), cfg.Publish.Remote)...)
	return checks
}

func checkBackupDir(dir string) Check {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		parent := filepath.Dir(filepath.Clean(dir))
		if err := probeWritable(parent); err != nil {
			return Check{Name: "Backup Directory", Status: "error", Message: fmt.Sprintf("%s cannot be created: %v", dir, err)}
		}
		return Check{Name: "Backup Directory", Status: "ok", Message: dir + " (created on first run)"}
	}
	if err != nil {
		return Check{Name: "Backup Directory", Status: "error", Message: err.Error()}
	}
	if !info.IsDir() {
		return Check{Name: "Backup Directory", Status: "error", Message: dir + " is not a directory"}
	}
	if err := probeWritable(dir); err != nil {
		return Check{Name: "Backup Directory", Status: "error", Message: fmt.Sprintf("%s is not writable: %v", dir, err)}
	}
	return Check{Name: "Backup Directory", Status: "ok", Message: dir}
}

func checkOutputDir(path string) Check {
	dir := filepath.Dir(path)
	if err := probeWritable(dir); err != nil {
		return Check{Name: "Output", Status: "error", Message: fmt.Sprintf("%s is not writable: %v", dir, err)}
	}
	return Check{Name: "Output", Status: "ok", Message: path}
}

// probeWritable creates and removes a temporary file in dir.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".romantable-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func checkRepository(dir, remote string) []Check {
	info, err := publish.Inspect(dir)
	if err != nil {
		if errors.Is(err, publish.ErrNotRepository) {
			return []Check{{Name: "Repository", Status: "error", Message: fmt.Sprintf("%s is not inside a git repository", dir)}}
		}
		return []Check{{Name: "Repository", Status: "error", Message: err.Error()}}
	}

	branch := info.Branch
	if branch == "" {
		branch = "no commits yet"
	}
	checks := []Check{{Name: "Repository", Status: "ok", Message: fmt.Sprintf("%s (%s)", info.Root, branch)}}

	switch {
	case len(info.Remotes) == 0:
		checks = append(checks, Check{Name: "Remote", Status: "warning", Message: "no remotes configured, push will fail"})
	case remote != "" && !hasRemote(info.Remotes, remote):
		checks = append(checks, Check{Name: "Remote", Status: "error", Message: fmt.Sprintf("remote %q is not configured", remote)})
	default:
		names := make([]string, 0, len(info.Remotes))
		for _, r := range info.Remotes {
			names = append(names, r.Name)
		}
		checks = append(checks, Check{Name: "Remote", Status: "ok", Message: strings.Join(names, ", ")})
	}

	if info.Clean {
		checks = append(checks, Check{Name: "Working Tree", Status: "ok", Message: "clean"})
	} else {
		checks = append(checks, Check{Name: "Working Tree", Status: "warning", Message: "uncommitted changes will be included in the next publish"})
	}
	return checks
}

func hasRemote(remotes []publish.Remote, name string) bool {
	for _, r := range remotes {
		if r.Name == name {
			return true
		}
	}
	return false
}
