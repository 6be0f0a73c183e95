// Package backups provides the "romantable backups" command.
package backups

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/backup"
	"github.com/OftenOfuton/My-AZIK/internal/output"
)

// NewCommand creates the "backups" command.
func NewCommand(provide app.Provider) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List workbook backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			dir := a.Config.BackupDir

			artifacts, err := backup.List(dir)
			if err != nil {
				return err
			}
			// List sorts oldest first.
			for i, j := 0, len(artifacts)-1; i < j; i, j = i+1, j-1 {
				artifacts[i], artifacts[j] = artifacts[j], artifacts[i]
			}
			if limit > 0 && len(artifacts) > limit {
				artifacts = artifacts[:limit]
			}

			out := cmd.OutOrStdout()
			if a.JSON {
				return output.JSON(out, artifacts)
			}

			if len(artifacts) == 0 {
				fmt.Fprintf(out, "No backups in %s\n", dir)
				return nil
			}

			bold := color.New(color.Bold).SprintFunc()
			fmt.Fprintf(out, "%s (%d)\n\n", bold(dir), len(artifacts))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "CREATED\tSIZE\tNAME\n")
			for _, art := range artifacts {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					art.CreatedAt.Format("2006-01-02 15:04:05"),
					formatSize(art.Size),
					art.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n backups (0 = all)")
	return cmd
}

// formatSize renders a byte count for humans.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
