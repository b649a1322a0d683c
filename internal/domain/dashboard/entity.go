package dashboard

import "time"

const (
	SourceReport = "report"
	SourceUpload = "upload"
)

// Dataset is a flat KPI table the dashboard aggregates over. It is built
// either from the latest generated report or from an uploaded workbook.
type Dataset struct {
	Source   string
	Name     string
	LoadedAt time.Time
	Columns  []string
	Rows     [][]any
}
