//go:build ignore

// This program generates the sample workbook used by the benchmarks and by
// manual runs of romantable:
//
//	go run testdata/generate_fixtures.go
package main

import (
	"fmt"
	"os"

	"github.com/OftenOfuton/My-AZIK/internal/formats/xlsx"
)

// kana pairs romaji input sequences with their kana output.
var kana = [][2]string{
	{"a", "あ"}, {"i", "い"}, {"u", "う"}, {"e", "え"}, {"o", "お"},
	{"ka", "か"}, {"ki", "き"}, {"ku", "く"}, {"ke", "け"}, {"ko", "こ"},
	{"sa", "さ"}, {"si", "し"}, {"su", "す"}, {"se", "せ"}, {"so", "そ"},
	{"ta", "た"}, {"ti", "ち"}, {"tu", "つ"}, {"te", "て"}, {"to", "と"},
	{"na", "な"}, {"ni", "に"}, {"nu", "ぬ"}, {"ne", "ね"}, {"no", "の"},
	{"ha", "は"}, {"hi", "ひ"}, {"hu", "ふ"}, {"he", "へ"}, {"ho", "ほ"},
	{"ma", "ま"}, {"mi", "み"}, {"mu", "む"}, {"me", "め"}, {"mo", "も"},
	{"ya", "や"}, {"yu", "ゆ"}, {"yo", "よ"},
	{"ra", "ら"}, {"ri", "り"}, {"ru", "る"}, {"re", "れ"}, {"ro", "ろ"},
	{"wa", "わ"}, {"wo", "を"}, {"nn", "ん"},
	{";", "っ"}, {"q", "ん"}, {"-", "ー"},
}

func main() {
	if err := generateWorkbook("testdata/設定値.xlsx"); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating 設定値.xlsx: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Test fixtures generated successfully.")
}

func generateWorkbook(path string) error {
	rows := [][]any{{"入力", "出力", "メモ"}}
	for _, p := range kana {
		rows = append(rows, []any{p[0], p[1], nil})
	}
	end := fmt.Sprintf("C%d", len(rows))

	return xlsx.WriteFile([]xlsx.SheetData{
		{
			Name: "README",
			Rows: [][]any{
				{"romantable sample workbook"},
				{"Edit Tbl_Main on the Table sheet, then run romantable."},
			},
		},
		{
			Name:   "Table",
			Rows:   rows,
			Tables: []xlsx.TableRegion{{Name: "Tbl_Main", Range: "A1:" + end}},
		},
	}, path)
}
