package record

import (
	"testing"
	"time"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"blank", Value{}, ""},
		{"text", TextValue("あ"), "あ"},
		{"empty text is blank", TextValue(""), ""},
		{"integer", NumberValue(42), "42"},
		{"fraction", NumberValue(1.5), "1.5"},
		{"negative", NumberValue(-0.25), "-0.25"},
		{"large", NumberValue(1234567890), "1234567890"},
		{"true", BoolValue(true), "TRUE"},
		{"false", BoolValue(false), "FALSE"},
		{"date", DateValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "2024-03-01"},
		{"datetime", DateValue(time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC)), "2024-03-01 09:30:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !(Value{}).IsBlank() {
		t.Error("zero value should be blank")
	}
	if !(Value{Kind: Text}).IsBlank() {
		t.Error("empty text should be blank")
	}
	if NumberValue(0).IsBlank() {
		t.Error("zero number is not blank")
	}
	if BoolValue(false).IsBlank() {
		t.Error("false is not blank")
	}
}

func TestSetStrings(t *testing.T) {
	s := &Set{
		Columns: []string{"入力", "出力"},
		Rows: []Row{
			{TextValue("a"), TextValue("A")},
			{NumberValue(1), Value{}},
		},
	}
	got := s.Strings()
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[1][0] != "1" || got[1][1] != "" {
		t.Errorf("unexpected row: %q", got[1])
	}

	var empty *Set
	if empty.Len() != 0 {
		t.Error("nil set should have length 0")
	}
}

func TestNilSet(t *testing.T) {
	var s *Set
	if s.Len() != 0 || s.Strings() != nil {
		t.Errorf("nil set: Len = %d, Strings = %v", s.Len(), s.Strings())
	}
}

func TestKindString(t *testing.T) {
	if Date.String() != "date" {
		t.Errorf("Date.String() = %q", Date.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Kind(99).String() = %q", Kind(99).String())
	}
}
