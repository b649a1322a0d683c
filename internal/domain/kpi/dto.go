package kpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/salesops/kpi-backend-go/internal/pkg/validator"
)

// ========================================
// RUN
// ========================================

// RunRequest selects the reporting month. Zero month and year select the
// current reporting period.
type RunRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *RunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month == 0 && r.Year == 0 {
		return nil
	}

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2018 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2018 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period resolves the request against today's date
func (r RunRequest) Period(today time.Time) Period {
	if r.Month == 0 && r.Year == 0 {
		return CurrentReportingPeriod(today)
	}
	return MonthPeriod(r.Year, time.Month(r.Month))
}

type RunSummary struct {
	RunID       string         `json:"run_id"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	GeneratedAt string         `json:"generated_at"`
	DurationMS  int64          `json:"duration_ms"`
	RowCounts   map[string]int `json:"row_counts"`
	ExportPath  string         `json:"export_path"`
}

// Run lifecycle events streamed to dashboard clients
const (
	EventRunStarted   = "run.started"
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
)

type RunEvent struct {
	RunID       string      `json:"run_id"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	Error       string      `json:"error,omitempty"`
	Summary     *RunSummary `json:"summary,omitempty"`
}

// Report is one published run
type Report struct {
	RunID       string
	Period      Period
	GeneratedAt time.Time
	Tables      []Table
	Combined    Table
	ExportPath  string
}

// Table returns the designation table of the report
func (r Report) Table(d Designation) (Table, bool) {
	for _, t := range r.Tables {
		if t.Designation == d {
			return t, true
		}
	}
	return Table{}, false
}

// ========================================
// TABLE
// ========================================

type TableRequest struct {
	Designation string `json:"designation"`
}

func (r *TableRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Designation = strings.ToUpper(strings.TrimSpace(r.Designation))
	if r.Designation == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "designation",
			Message: "designation is required",
		})
	} else if !Designation(r.Designation).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "designation",
			Message: ErrInvalidDesignation.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TableResponse struct {
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Columns     []string `json:"columns"`
	Rows        [][]any  `json:"rows"`
}

// NewTableResponse flattens a table into column-ordered cells
func NewTableResponse(t Table) TableResponse {
	rows := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = r.Value(col)
		}
		rows = append(rows, cells)
	}
	return TableResponse{
		Name:        t.Name,
		Designation: string(t.Designation),
		Columns:     t.Columns,
		Rows:        rows,
	}
}

// ========================================
// REPORT
// ========================================

type TableSummary struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	Rows        int    `json:"rows"`
}

type ReportResponse struct {
	RunID       string         `json:"run_id"`
	Period      string         `json:"period"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	GeneratedAt string         `json:"generated_at"`
	ExportPath  string         `json:"export_path"`
	Tables      []TableSummary `json:"tables"`
}

func NewReportResponse(r Report) ReportResponse {
	tables := make([]TableSummary, 0, len(r.Tables)+1)
	for _, t := range r.Tables {
		tables = append(tables, TableSummary{Name: t.Name, Designation: string(t.Designation), Rows: len(t.Rows)})
	}
	tables = append(tables, TableSummary{Name: r.Combined.Name, Rows: len(r.Combined.Rows)})

	return ReportResponse{
		RunID:       r.RunID,
		Period:      r.Period.Label(),
		PeriodStart: r.Period.Start.Format(dateLayout),
		PeriodEnd:   r.Period.End.Format(dateLayout),
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		ExportPath:  r.ExportPath,
		Tables:      tables,
	}
}
