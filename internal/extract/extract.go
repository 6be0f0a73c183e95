// Package extract locates a table in a workbook and projects it onto a fixed
// list of columns.
//
// Lookup is split into independent strategies tried in order by Extract:
// NamedTable searches declared table regions by name, HeaderScan falls back
// to treating the first row of each worksheet as a header. Worksheets are
// always visited in workbook declaration order, so the first match wins
// deterministically.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OftenOfuton/My-AZIK/internal/formats/xlsx"
	"github.com/OftenOfuton/My-AZIK/internal/record"
)

// ErrNotFound is matched by errors reporting that no table or worksheet
// carried the requested columns.
var ErrNotFound = errors.New("table or columns not found")

// NotFoundError identifies the table and columns that could not be located.
type NotFoundError struct {
	Table   string
	Columns []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q or columns [%s] not found", e.Table, strings.Join(e.Columns, ", "))
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Source is the read side of a workbook.
type Source interface {
	SheetNames() []string
	Tables(sheet string) ([]xlsx.TableRegion, error)
	ReadRange(sheet, ref string) ([][]record.Value, error)
	ReadSheet(sheet string) ([][]record.Value, error)
}

// Query names the table to look for and the columns to keep, in output order.
type Query struct {
	Table   string
	Columns []string
}

// Strategy is one way of finding the query's rows in a source.
// A strategy reports found=false when it has no match; errors are reserved
// for failures that should abort the lookup.
type Strategy interface {
	Name() string
	Find(src Source, q Query) (set *record.Set, found bool, err error)
}

// DefaultStrategies returns the lookup order used by ExtractFile.
func DefaultStrategies(logger zerolog.Logger) []Strategy {
	return []Strategy{
		NamedTable{Logger: logger},
		HeaderScan{Logger: logger},
	}
}

// Extract runs the strategies in order and returns the first match.
func Extract(src Source, q Query, strategies ...Strategy) (*record.Set, error) {
	if len(q.Columns) == 0 {
		return nil, fmt.Errorf("no columns requested")
	}
	for _, s := range strategies {
		set, found, err := s.Find(src, q)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		if found {
			return set, nil
		}
	}
	return nil, &NotFoundError{Table: q.Table, Columns: q.Columns}
}

// ExtractFile opens the workbook at path and runs the default strategies.
func ExtractFile(path string, q Query, logger zerolog.Logger) (*record.Set, error) {
	wb, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return Extract(wb, q, DefaultStrategies(logger)...)
}

// NamedTable finds a declared table region whose name equals the query's
// table name exactly.
type NamedTable struct {
	Logger zerolog.Logger
}

// Name implements Strategy.
func (NamedTable) Name() string { return "named table" }

// Find implements Strategy. Regions without data rows, regions that cannot be
// read, and regions lacking a required column are skipped.
func (s NamedTable) Find(src Source, q Query) (*record.Set, bool, error) {
	for _, sheet := range src.SheetNames() {
		tables, err := src.Tables(sheet)
		if err != nil {
			return nil, false, err
		}
		for _, t := range tables {
			if t.Name != q.Table {
				continue
			}
			grid, err := src.ReadRange(sheet, t.Range)
			if err != nil {
				s.Logger.Warn().Err(err).Str("sheet", sheet).Str("table", t.Name).Msg("skipping unreadable table")
				continue
			}
			if len(grid) < 2 {
				s.Logger.Debug().Str("sheet", sheet).Str("table", t.Name).Msg("skipping table without data rows")
				continue
			}
			rows, ok := project(grid, q.Columns)
			if !ok {
				s.Logger.Debug().Str("sheet", sheet).Str("table", t.Name).Msg("table lacks required columns")
				continue
			}
			return &record.Set{
				Columns: q.Columns,
				Rows:    rows,
				Source:  fmt.Sprintf("table %q on sheet %q", t.Name, sheet),
			}, true, nil
		}
	}
	return nil, false, nil
}

// HeaderScan treats the first row of every worksheet as a header and picks
// the first worksheet whose headers include every required column.
type HeaderScan struct {
	Logger zerolog.Logger
}

// Name implements Strategy.
func (HeaderScan) Name() string { return "header scan" }

// Find implements Strategy.
func (s HeaderScan) Find(src Source, q Query) (*record.Set, bool, error) {
	for _, sheet := range src.SheetNames() {
		grid, err := src.ReadSheet(sheet)
		if err != nil {
			return nil, false, err
		}
		if len(grid) == 0 {
			continue
		}
		rows, ok := project(grid, q.Columns)
		if !ok {
			continue
		}
		s.Logger.Debug().Str("sheet", sheet).Msg("columns found by header scan")
		return &record.Set{
			Columns: q.Columns,
			Rows:    rows,
			Source:  fmt.Sprintf("sheet %q", sheet),
		}, true, nil
	}
	return nil, false, nil
}

// project uses grid[0] as the header row and returns the remaining rows
// narrowed to columns, in the given order, with header echoes and blank rows
// removed. ok is false when a column is missing from the header.
func project(grid [][]record.Value, columns []string) (rows []record.Row, ok bool) {
	index := make(map[string]int, len(grid[0]))
	for i, h := range grid[0] {
		label := h.String()
		if _, dup := index[label]; !dup {
			index[label] = i
		}
	}

	positions := make([]int, len(columns))
	for i, c := range columns {
		pos, found := index[c]
		if !found {
			return nil, false
		}
		positions[i] = pos
	}

	rows = make([]record.Row, 0, len(grid)-1)
	for _, line := range grid[1:] {
		row := make(record.Row, len(columns))
		for i, pos := range positions {
			if pos < len(line) {
				row[i] = line[pos]
			}
		}
		if isHeaderEcho(row, columns) || isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, true
}

func isHeaderEcho(row record.Row, columns []string) bool {
	for i, v := range row {
		if v.String() != columns[i] {
			return false
		}
	}
	return true
}

func isBlankRow(row record.Row) bool {
	for _, v := range row {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}
