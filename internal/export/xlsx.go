package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Items"

// numericColumns are the zero-based columns written as numbers, not text.
var numericColumns = map[int]bool{0: true, 3: true, 5: true, 6: true, 7: true, 8: true, 9: true}

// WriteXLSX writes the sheet as a single-worksheet workbook.
func WriteXLSX(w io.Writer, s *Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	rowNum := 1
	if err := setRow(f, rowNum, toCells(s.Header, nil)); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, rowNum, rowNum, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for _, item := range s.Items {
		rowNum++
		if err := setRow(f, rowNum, toCells(item, numericColumns)); err != nil {
			return err
		}
	}

	rowNum++
	for _, kv := range s.Summary {
		rowNum++
		cells := []any{kv[0], kv[1]}
		if v, err := strconv.ParseFloat(kv[1], 64); err == nil {
			cells[1] = v
		}
		if err := setRow(f, rowNum, cells); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
			return fmt.Errorf("styling summary: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 40); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func toCells(row []string, numeric map[int]bool) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
		if numeric[i] {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out[i] = n
			}
		}
	}
	return out
}
