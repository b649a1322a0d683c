package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSheets returns every worksheet of an xlsx workbook, header included
func ReadSheets(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		s := Sheet{Name: name}
		if len(rows) > 0 {
			s.Header = trimAll(rows[0])
			for _, row := range rows[1:] {
				cells := make([]any, len(s.Header))
				for i := range s.Header {
					if i < len(row) && row[i] != "" {
						cells[i] = row[i]
					}
				}
				s.Rows = append(s.Rows, cells)
			}
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// ReadFirstSheet returns the rows of the first worksheet as strings
func ReadFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}
	return rows, nil
}

// ColumnIndex finds a header column, ignoring case and surrounding spaces
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
