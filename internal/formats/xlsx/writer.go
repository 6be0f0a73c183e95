package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetData describes a worksheet to be written. Rows hold raw Go values
// (string, int, float64, bool, time.Time or nil).
type SheetData struct {
	Name   string
	Rows   [][]any
	Tables []TableRegion
}

// WriteFile creates a new .xlsx file with the given sheets and declared tables.
func WriteFile(sheets []SheetData, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		sheetName := sheet.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		if i == 0 {
			// Rename default sheet
			defaultSheet := f.GetSheetName(0)
			if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
				return fmt.Errorf("could not rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				return fmt.Errorf("could not create sheet %q: %w", sheetName, err)
			}
		}

		for rowIdx, row := range sheet.Rows {
			for colIdx, cell := range row {
				if cell == nil {
					continue
				}
				cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return fmt.Errorf("invalid cell coordinates: %w", err)
				}
				if err := f.SetCellValue(sheetName, cellName, cell); err != nil {
					return fmt.Errorf("could not set cell %s: %w", cellName, err)
				}
			}
		}

		for _, t := range sheet.Tables {
			err := f.AddTable(sheetName, &excelize.Table{
				Range:     t.Range,
				Name:      t.Name,
				StyleName: "TableStyleMedium2",
			})
			if err != nil {
				return fmt.Errorf("could not add table %q to sheet %q: %w", t.Name, sheetName, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}

	return nil
}
