// Package xlsx reads typed cell values and declared tables from .xlsx workbooks.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/OftenOfuton/My-AZIK/internal/record"
)

// ErrInvalidRange is returned for a malformed range reference.
var ErrInvalidRange = errors.New("invalid range")

// TableRegion is a declared table in a worksheet.
type TableRegion struct {
	Name  string `json:"name"`
	Sheet string `json:"sheet"`
	Range string `json:"range"`
}

// Workbook is an open, read-only .xlsx file.
type Workbook struct {
	Path string

	f          *excelize.File
	date1904   bool
	dateStyles map[int]bool
}

// Open opens an .xlsx file for reading. Formulas are not evaluated; cached
// results are returned as stored in the file.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}

	wb := newWorkbook(f)
	wb.Path = path
	return wb, nil
}

// OpenReader reads an .xlsx workbook from r.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not read Excel data: %w", err)
	}
	return newWorkbook(f), nil
}

func newWorkbook(f *excelize.File) *Workbook {
	wb := &Workbook{
		f:          f,
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb
}

// Close releases the underlying file.
func (wb *Workbook) Close() error {
	return wb.f.Close()
}

// SheetNames returns the worksheet names in workbook declaration order.
func (wb *Workbook) SheetNames() []string {
	return wb.f.GetSheetList()
}

// Tables returns the tables declared on a worksheet.
func (wb *Workbook) Tables(sheet string) ([]TableRegion, error) {
	tables, err := wb.f.GetTables(sheet)
	if err != nil {
		return nil, fmt.Errorf("could not list tables on sheet %q: %w", sheet, err)
	}

	regions := make([]TableRegion, 0, len(tables))
	for _, t := range tables {
		regions = append(regions, TableRegion{Name: t.Name, Sheet: sheet, Range: t.Range})
	}
	return regions, nil
}

// ReadRange returns the typed values of a rectangular range such as "A1:C10".
// Every returned row has the same width.
func (wb *Workbook) ReadRange(sheet, ref string) ([][]record.Value, error) {
	x1, y1, x2, y2, err := rangeCoordinates(ref)
	if err != nil {
		return nil, fmt.Errorf("%w %q on sheet %q: %v", ErrInvalidRange, ref, sheet, err)
	}

	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	grid := make([][]record.Value, 0, y2-y1+1)
	for row := y1; row <= y2; row++ {
		line := make([]record.Value, 0, x2-x1+1)
		for col := x1; col <= x2; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, fmt.Errorf("invalid cell coordinates: %w", err)
			}
			v, err := wb.cellValue(sheet, cell)
			if err != nil {
				return nil, err
			}
			line = append(line, v)
		}
		grid = append(grid, line)
	}
	return grid, nil
}

// rangeCoordinates splits a "A1:C10" reference into its corner coordinates.
func rangeCoordinates(ref string) (x1, y1, x2, y2 int, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("expected two cells separated by ':'")
	}
	if x1, y1, err = excelize.CellNameToCoordinates(parts[0]); err != nil {
		return 0, 0, 0, 0, err
	}
	if x2, y2, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
		return 0, 0, 0, 0, err
	}
	return x1, y1, x2, y2, nil
}

// ReadSheet returns the used area of a worksheet, starting at A1, as a
// rectangular grid. Short rows are padded with blanks.
func (wb *Workbook) ReadSheet(sheet string) ([][]record.Value, error) {
	rows, err := wb.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, nil
	}

	end, err := excelize.CoordinatesToCellName(width, len(rows))
	if err != nil {
		return nil, fmt.Errorf("invalid cell coordinates: %w", err)
	}
	return wb.ReadRange(sheet, "A1:"+end)
}

func (wb *Workbook) cellValue(sheet, cell string) (record.Value, error) {
	raw, err := wb.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return record.Value{}, fmt.Errorf("could not read %s!%s: %w", sheet, cell, err)
	}
	if raw == "" {
		return record.Value{}, nil
	}

	typ, err := wb.f.GetCellType(sheet, cell)
	if err != nil {
		return record.Value{}, fmt.Errorf("could not read type of %s!%s: %w", sheet, cell, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return record.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return record.DateValue(t), nil
		}
		return record.TextValue(raw), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return record.TextValue(raw), nil
		}
		if wb.isDateCell(sheet, cell) {
			if t, err := excelize.ExcelDateToTime(n, wb.date1904); err == nil {
				return record.DateValue(t), nil
			}
		}
		return record.NumberValue(n), nil
	default:
		return record.TextValue(raw), nil
	}
}

func (wb *Workbook) isDateCell(sheet, cell string) bool {
	styleID, err := wb.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if isDate, ok := wb.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := wb.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	wb.dateStyles[styleID] = isDate
	return isDate
}

// builtinDateFormats are the predefined number format ids that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return hasDateTokens(*custom)
	}
	return builtinDateFormats[id]
}

// hasDateTokens reports whether a format code contains y, d, h or s outside
// quoted literals and bracketed sections.
func hasDateTokens(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '\\':
			escaped = true
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'y' || r == 'd' || r == 'h' || r == 's':
			return true
		}
	}
	return false
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
