// Package record defines the cell values and record sets passed between the
// workbook reader, the extractor, and the TSV writer.
package record

import (
	"strconv"
	"time"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	// Blank is an empty or absent cell.
	Blank Kind = iota
	// Text is a string cell.
	Text
	// Number is a numeric cell without a date format.
	Number
	// Bool is a boolean cell.
	Bool
	// Date is a numeric cell carrying a date or time number format.
	Date
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Text:
		return "text"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single cell value as read from a workbook.
// Formatting to text happens only in String.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// TextValue returns a Text value, or Blank for the empty string.
func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: Text, Str: s}
}

// NumberValue returns a Number value.
func NumberValue(n float64) Value {
	return Value{Kind: Number, Num: n}
}

// BoolValue returns a Bool value.
func BoolValue(b bool) Value {
	return Value{Kind: Bool, Bool: b}
}

// DateValue returns a Date value.
func DateValue(t time.Time) Value {
	return Value{Kind: Date, Time: t}
}

// IsBlank reports whether the value holds nothing.
func (v Value) IsBlank() bool {
	return v.Kind == Blank || (v.Kind == Text && v.Str == "")
}

// String renders the value the way it is written to the TSV output.
func (v Value) String() string {
	switch v.Kind {
	case Text:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Bool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case Date:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Row is one record, holding one value per column of its Set.
type Row []Value

// Set is an ordered collection of rows projected onto a fixed list of columns.
type Set struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	// Source describes where the rows were found, e.g. `table "Tbl_Main" on sheet "Sheet1"`.
	Source string `json:"source"`
}

// Len returns the number of rows.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Strings returns every row rendered as text.
func (s *Set) Strings() [][]string {
	if s == nil {
		return nil
	}
	out := make([][]string, 0, s.Len())
	for _, row := range s.Rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = v.String()
		}
		out = append(out, line)
	}
	return out
}
