package xlsx

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/OftenOfuton/My-AZIK/internal/record"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.xlsx")
	sheets := []SheetData{
		{
			Name: "Main",
			Rows: [][]any{
				{"入力", "出力", "メモ"},
				{"a", "A", 1},
				{"b", "B", 2.5},
				{"c", true, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			},
			Tables: []TableRegion{{Name: "Tbl_Main", Range: "A1:C4"}},
		},
		{
			Name: "Other",
			Rows: [][]any{
				{"x", "y"},
				{"1"},
			},
		},
	}
	if err := WriteFile(sheets, path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestOpenAndSheetNames(t *testing.T) {
	wb, err := Open(writeSample(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer wb.Close()

	names := wb.SheetNames()
	if len(names) != 2 || names[0] != "Main" || names[1] != "Other" {
		t.Errorf("unexpected sheet names: %v", names)
	}
}

func TestTables(t *testing.T) {
	wb, err := Open(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	tables, err := wb.Tables("Main")
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].Name != "Tbl_Main" || tables[0].Range != "A1:C4" || tables[0].Sheet != "Main" {
		t.Errorf("unexpected table: %+v", tables[0])
	}

	other, err := wb.Tables("Other")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("expected no tables on Other, got %v", other)
	}
}

func TestReadRangeTypes(t *testing.T) {
	wb, err := Open(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	grid, err := wb.ReadRange("Main", "A1:C4")
	if err != nil {
		t.Fatalf("ReadRange failed: %v", err)
	}
	if len(grid) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(grid))
	}

	checks := []struct {
		row, col int
		kind     record.Kind
		text     string
	}{
		{0, 0, record.Text, "入力"},
		{1, 2, record.Number, "1"},
		{2, 2, record.Number, "2.5"},
		{3, 1, record.Bool, "TRUE"},
		{3, 2, record.Date, "2024-03-01"},
	}
	for _, c := range checks {
		v := grid[c.row][c.col]
		if v.Kind != c.kind {
			t.Errorf("cell (%d,%d): kind = %s, want %s", c.row, c.col, v.Kind, c.kind)
		}
		if v.String() != c.text {
			t.Errorf("cell (%d,%d): text = %q, want %q", c.row, c.col, v.String(), c.text)
		}
	}
}

func TestReadRangeReversedRef(t *testing.T) {
	wb, err := Open(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	grid, err := wb.ReadRange("Main", "B2:A1")
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 2 || len(grid[0]) != 2 {
		t.Fatalf("unexpected grid shape: %d rows", len(grid))
	}
	if grid[1][1].String() != "A" {
		t.Errorf("expected A, got %q", grid[1][1].String())
	}
}

func TestReadRangeInvalid(t *testing.T) {
	wb, err := Open(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	for _, ref := range []string{"not-a-range", "A1", "A1:B2:C3", "A1:ZZ", ""} {
		_, err = wb.ReadRange("Main", ref)
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ReadRange(%q): expected ErrInvalidRange, got %v", ref, err)
		}
	}
}

func TestReadSheetPadsRows(t *testing.T) {
	wb, err := Open(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	grid, err := wb.ReadSheet("Other")
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(grid))
	}
	if len(grid[1]) != 2 {
		t.Fatalf("expected padded width 2, got %d", len(grid[1]))
	}
	// "1" was written as a string and must stay text.
	if grid[1][0].Kind != record.Text {
		t.Errorf("expected text, got %s", grid[1][0].Kind)
	}
	if !grid[1][1].IsBlank() {
		t.Errorf("expected blank padding, got %q", grid[1][1].String())
	}
}

func TestOpenNotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.xlsx")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHasDateTokens(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy/mm/dd", true},
		{"h:mm:ss", true},
		{"0.00", false},
		{"#,##0", false},
		{`"day "0`, false},
		{"[Red]0.00", false},
		{`0\d`, false},
		{"[$-411]ggge\"年\"m\"月\"d\"日\"", true},
	}
	for _, tt := range tests {
		if got := hasDateTokens(tt.code); got != tt.want {
			t.Errorf("hasDateTokens(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsDateFormat(t *testing.T) {
	if !isDateFormat(14, nil) {
		t.Error("built-in 14 is a date format")
	}
	if isDateFormat(2, nil) {
		t.Error("built-in 2 is not a date format")
	}
	custom := "0.000"
	if isDateFormat(164, &custom) {
		t.Error("custom numeric format is not a date")
	}
}
