// Package show provides the "romantable show" command.
package show

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/formats/tsv"
	"github.com/OftenOfuton/My-AZIK/internal/output"
)

// NewCommand creates the "show" command.
func NewCommand(provide app.Provider) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the exported TSV as a table",
		Long:  "Print the exported TSV file (default: the configured output) with the column headers.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			path := a.Config.Output
			if len(args) == 1 {
				path = args[0]
			}

			rows, err := tsv.ReadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.JSON {
				pairs := make([]map[string]string, 0, len(rows))
				for _, row := range rows {
					pairs = append(pairs, pairOf(a.Config.Columns, row))
				}
				return output.JSON(out, pairs)
			}

			total := len(rows)
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", header(a.Config.Columns, 0), header(a.Config.Columns, 1))
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\n", field(row, 0), field(row, 1))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(rows) < total {
				fmt.Fprintf(out, "... %d more\n", total-len(rows))
			}
			fmt.Fprintf(out, "\n%d rows in %s\n", total, color.CyanString(path))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n rows (0 = all)")
	return cmd
}

func header(columns []string, i int) string {
	if i < len(columns) {
		return columns[i]
	}
	return fmt.Sprintf("column %d", i+1)
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func pairOf(columns []string, row []string) map[string]string {
	m := make(map[string]string, 2)
	for i := 0; i < 2; i++ {
		m[header(columns, i)] = field(row, i)
	}
	return m
}
