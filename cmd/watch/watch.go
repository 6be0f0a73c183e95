// Package watch provides the "romantable watch" command.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/logging"
	"github.com/OftenOfuton/My-AZIK/internal/output"
	"github.com/OftenOfuton/My-AZIK/internal/pipeline"
	w "github.com/OftenOfuton/My-AZIK/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand(provide app.Provider) *cobra.Command {
	var (
		debounce int
		skipInit bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-export whenever the workbook is saved",
		Long: `Export once, then watch the workbook and export again after every save.
Bursts of file events are collapsed into one run. Failed runs are reported
and the watcher keeps going.

Example:
  romantable watch --no-git
  romantable watch -e 設定値.xlsx --debounce 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			opts, err := a.PipelineOptions()
			if err != nil {
				return err
			}
			runner := a.Runner(cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !skipInit {
				if _, err := runner.Run(ctx, opts); err != nil {
					// The workbook must exist to be watched; later failures are retried on save.
					if pipeline.ExitCode(err) == pipeline.ExitInputMissing {
						return err
					}
					a.Logger.Error().Err(err).Msg("initial export failed")
				}
			}

			watcher, err := w.New(opts.Workbook, func(ctx context.Context, path string) error {
				_, err := runner.Run(ctx, opts)
				return err
			}, logging.Component(a.Logger, "watch"))
			if err != nil {
				return err
			}
			watcher.Debounce = a.Config.Debounce()
			if cmd.Flags().Changed("debounce") {
				watcher.Debounce = time.Duration(debounce) * time.Millisecond
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (press Ctrl+C to stop)\n", color.CyanString(opts.Workbook))
			if err := watcher.Start(ctx); err != nil {
				return err
			}

			if a.JSON {
				return output.JSON(cmd.OutOrStdout(), watcher.GetEvents())
			}
			processed, failed := 0, 0
			for _, evt := range watcher.GetEvents() {
				if evt.Status == "error" {
					failed++
				} else {
					processed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nStopped: %d export(s), %d failed\n", processed, failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")
	cmd.Flags().BoolVar(&skipInit, "skip-initial", false, "Do not export before the first change")

	return cmd
}
