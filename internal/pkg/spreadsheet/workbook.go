package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// Sheet is one worksheet: a header row followed by data rows.
// A nil cell is written as an empty cell.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Write renders the sheets into an xlsx workbook, in order
func Write(sheets []Sheet) (*bytes.Buffer, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", s.Name, err)
		}

		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return fmt.Errorf("failed to open stream writer for %q: %w", s.Name, err)
	}

	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", s.Name, err)
	}

	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, s.Name, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %q: %w", s.Name, err)
	}
	return nil
}
