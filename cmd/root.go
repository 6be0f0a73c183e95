// Package cmd contains all CLI commands for the romantable binary.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/OftenOfuton/My-AZIK/cmd/backups"
	"github.com/OftenOfuton/My-AZIK/cmd/completion"
	cmdconfig "github.com/OftenOfuton/My-AZIK/cmd/config"
	"github.com/OftenOfuton/My-AZIK/cmd/doctor"
	"github.com/OftenOfuton/My-AZIK/cmd/inspect"
	"github.com/OftenOfuton/My-AZIK/cmd/show"
	"github.com/OftenOfuton/My-AZIK/cmd/version"
	cmdwatch "github.com/OftenOfuton/My-AZIK/cmd/watch"
	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/config"
	"github.com/OftenOfuton/My-AZIK/internal/output"
	"github.com/OftenOfuton/My-AZIK/internal/pipeline"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"excel":      "excel",
	"output":     "output",
	"backup-dir": "backup_dir",
	"table":      "table",
	"columns":    "columns",
	"policy":     "tsv.policy",
	"message":    "publish.message",
	"remote":     "publish.remote",
	"branch":     "publish.branch",
	"log-format": "log.format",
}

type rootOptions struct {
	configFile string
	verbose    bool
	noColor    bool
	jsonOutput bool
	noGit      bool

	app *app.App
}

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	provide := func() *app.App { return opts.app }

	rootCmd := &cobra.Command{
		Use:   "romantable",
		Short: "Export the romaji table from Excel to TSV and publish it",
		Long: `romantable backs up the settings workbook, extracts the input/output
columns of its conversion table, writes them as a tab-separated file,
and commits and pushes the result with git.

Exit codes:
  0  success (a failed publish still exits 0)
  1  usage or configuration error
  2  workbook not found
  3  backup failed
  4  table or columns not found
  5  TSV could not be written`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			v := config.NewViper(opts.configFile)
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			if opts.noGit {
				v.Set("publish.enabled", false)
			}
			a, err := app.Load(v, opts.verbose, opts.noColor)
			if err != nil {
				return err
			}
			a.JSON = opts.jsonOutput
			opts.app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			runOpts, err := a.PipelineOptions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !a.JSON {
				_, err = a.Runner(out).Run(cmd.Context(), runOpts)
				return err
			}

			res, err := a.Runner(io.Discard).Run(cmd.Context(), runOpts)
			if err != nil {
				if perr := output.PrintError(out, "export", err, pipeline.ExitCode(err)); perr != nil {
					return perr
				}
				return err
			}
			return output.PrintResult(out, "export", res)
		},
	}

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Config file (default .romantable.yaml or ~/.romantable/config.yaml)")
	pf.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI color output")
	pf.BoolVar(&opts.jsonOutput, "json", false, "Output as machine-readable JSON")
	pf.String("log-format", "pretty", "Log format: pretty | json")

	// Export flags, shared with watch
	pf.StringP("excel", "e", config.DefaultExcel, "Workbook to export")
	pf.StringP("output", "o", config.DefaultOutput, "TSV file to write")
	pf.StringP("backup-dir", "b", config.DefaultBackupDir, "Directory for workbook backups")
	pf.StringP("table", "t", config.DefaultTable, "Named table to read")
	pf.StringSlice("columns", config.DefaultColumns, "Input and output column headers")
	pf.String("policy", config.DefaultPolicy, "Output encoding: auto | unix | windows")
	pf.StringP("message", "m", "", "Commit message (default \"Update <output>\")")
	pf.String("remote", "", "Remote to push to")
	pf.String("branch", "", "Branch to push (requires --remote)")
	pf.BoolVar(&opts.noGit, "no-git", false, "Skip the git commit and push")

	// Register subcommands
	rootCmd.AddCommand(cmdwatch.NewCommand(provide))
	rootCmd.AddCommand(backups.NewCommand(provide))
	rootCmd.AddCommand(show.NewCommand(provide))
	rootCmd.AddCommand(inspect.NewCommand(provide))
	rootCmd.AddCommand(cmdconfig.NewCommand(provide))
	rootCmd.AddCommand(doctor.NewCommand(provide))
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("could not bind --%s: %w", name, err)
		}
	}
	return nil
}

// Execute runs the root command and exits with the pipeline's exit code.
func Execute() {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	os.Exit(pipeline.ExitCode(err))
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed).SprintFunc()
	var se *pipeline.StageError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "%s %s (exit %d)\n", red("✗"), err, se.Stage.ExitCode())
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}
