package kpi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
)

// ExportFileName names the workbook of a run generated at t, e.g. "Effort KPI_16062025.xlsx"
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("Effort KPI_%s.xlsx", t.Format("02012006"))
}

// ToSheet flattens a table into a worksheet in column order
func ToSheet(t kpi.Table) spreadsheet.Sheet {
	resp := kpi.NewTableResponse(t)
	return spreadsheet.Sheet{
		Name:   t.Name,
		Header: resp.Columns,
		Rows:   resp.Rows,
	}
}

// RenderWorkbook writes the designation tables followed by the combined table
func RenderWorkbook(tables []kpi.Table, combined kpi.Table) (*bytes.Buffer, error) {
	sheets := make([]spreadsheet.Sheet, 0, len(tables)+1)
	for _, t := range tables {
		sheets = append(sheets, ToSheet(t))
	}
	sheets = append(sheets, ToSheet(combined))

	buf, err := spreadsheet.Write(sheets)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kpi.ErrExportFailed, err)
	}
	return buf, nil
}
