// Package inspect provides the "romantable inspect" command.
package inspect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/extract"
	"github.com/OftenOfuton/My-AZIK/internal/formats/xlsx"
	"github.com/OftenOfuton/My-AZIK/internal/logging"
	"github.com/OftenOfuton/My-AZIK/internal/output"
)

// Table describes one named table.
type Table struct {
	Name    string   `json:"name"`
	Range   string   `json:"range"`
	Headers []string `json:"headers"`
	Rows    int      `json:"rows"`
}

// Sheet describes one worksheet.
type Sheet struct {
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

// Report is the inspection result for a workbook.
type Report struct {
	Path   string  `json:"path"`
	Sheets []Sheet `json:"sheets"`
	// Match names where the configured table and columns were found.
	Match string `json:"match,omitempty"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// NewCommand creates the "inspect" command.
func NewCommand(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [workbook]",
		Short: "List sheets, named tables and headers of a workbook",
		Long: `List every worksheet and named table of the workbook with its range and
header row, and report where the configured table and columns are found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			path := a.Config.Excel
			if len(args) == 1 {
				path = args[0]
			}

			wb, err := xlsx.Open(path)
			if err != nil {
				return err
			}
			defer wb.Close()

			report, err := Inspect(wb)
			if err != nil {
				return err
			}
			report.Path = path

			q := extract.Query{Table: a.Config.Table, Columns: a.Config.Columns}
			set, err := extract.Extract(wb, q, extract.DefaultStrategies(logging.Component(a.Logger, "extract"))...)
			if err != nil {
				report.Error = err.Error()
			} else {
				report.Match = set.Source
				report.Rows = set.Len()
			}

			out := cmd.OutOrStdout()
			if a.JSON {
				return output.JSON(out, report)
			}

			bold := color.New(color.Bold).SprintFunc()
			faint := color.New(color.Faint).SprintFunc()
			fmt.Fprintln(out, bold(path))
			for _, sheet := range report.Sheets {
				fmt.Fprintf(out, "  sheet %q\n", sheet.Name)
				if len(sheet.Tables) == 0 {
					fmt.Fprintf(out, "    %s\n", faint("no tables"))
				}
				for _, t := range sheet.Tables {
					marker := " "
					if t.Name == a.Config.Table {
						marker = color.GreenString("*")
					}
					fmt.Fprintf(out, "  %s table %s %s, %d rows\n", marker, t.Name, faint(t.Range), t.Rows)
					fmt.Fprintf(out, "      headers: %s\n", strings.Join(t.Headers, " | "))
				}
			}
			fmt.Fprintln(out)
			if report.Error != "" {
				color.New(color.FgRed).Fprintf(out, "✗ %s\n", report.Error)
				return nil
			}
			fmt.Fprintf(out, "%s %d rows from %s\n", color.GreenString("✓"), report.Rows, report.Match)
			return nil
		},
	}
}

// Inspect lists the sheets and named tables of wb.
func Inspect(wb *xlsx.Workbook) (*Report, error) {
	report := &Report{}
	for _, name := range wb.SheetNames() {
		sheet := Sheet{Name: name, Tables: []Table{}}
		regions, err := wb.Tables(name)
		if err != nil {
			return nil, fmt.Errorf("could not list tables on %q: %w", name, err)
		}
		for _, region := range regions {
			t := Table{Name: region.Name, Range: region.Range, Headers: []string{}}
			grid, err := wb.ReadRange(name, region.Range)
			if err != nil && !errors.Is(err, xlsx.ErrInvalidRange) {
				return nil, err
			}
			if len(grid) > 0 {
				for _, v := range grid[0] {
					t.Headers = append(t.Headers, v.String())
				}
				t.Rows = len(grid) - 1
			}
			sheet.Tables = append(sheet.Tables, t)
		}
		report.Sheets = append(report.Sheets, sheet)
	}
	return report, nil
}
