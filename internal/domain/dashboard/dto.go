package dashboard

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/validator"
)

// MaxUploadSize caps uploaded workbooks at 10 MiB
const MaxUploadSize = 10 << 20

// FilterField binds a query parameter to the dataset column it filters on
type FilterField struct {
	Param  string
	Column string
}

// FilterFields are applied in order; each narrows the options of the next
var FilterFields = []FilterField{
	{Param: "territory_headquarter", Column: kpi.ColTerritoryHeadquarter},
	{Param: "territory", Column: kpi.ColTerritory},
	{Param: "zone", Column: kpi.ColZone},
	{Param: "abm", Column: kpi.ColABM},
	{Param: "zbm", Column: kpi.ColZBM},
	{Param: "nsm", Column: kpi.ColNSM},
}

// ========== FILTER ==========

type Filter struct {
	Source   string
	Division string
	// selected values keyed by column; an empty selection keeps every row
	Selections map[string][]string
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	f.Source = strings.ToLower(strings.TrimSpace(f.Source))
	if f.Source != "" && f.Source != SourceReport && f.Source != SourceUpload {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of report, upload",
		})
	}
	f.Division = strings.TrimSpace(f.Division)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== DASHBOARD ==========

type DashboardResponse struct {
	Source    string              `json:"source"`
	Dataset   string              `json:"dataset"`
	Division  string              `json:"division"`
	Rows      int                 `json:"rows"`
	Divisions []DivisionMetrics   `json:"divisions"`
	Zones     []ZoneMetrics       `json:"zones"`
	Visits    VisitDistribution   `json:"visits"`
	Filters   map[string][]string `json:"filters,omitempty"`
}

// DivisionMetrics sums effort columns and averages ratio columns per division
type DivisionMetrics struct {
	Division        string  `json:"division"`
	Employees       int     `json:"employees"`
	CallDays        float64 `json:"call_days"`
	CallDaysAvg     float64 `json:"call_days_avg"`
	PlanDRCalls     int64   `json:"plan_dr_calls"`
	ActualDRCalls   int64   `json:"actual_dr_calls"`
	Leaves          int64   `json:"leaves"`
	FieldWork       float64 `json:"field_work"`
	NonFieldWork    float64 `json:"non_field_work"`
	TotalDays       float64 `json:"total_days"`
	DoctorCallAvg   float64 `json:"doctor_call_avg"`

	// nil when no row carries the percentage
	TwoPCFreqCovPct *float64 `json:"two_pc_freq_cov_pct"`
	TotalDRCovPct   *float64 `json:"total_dr_cov_pct"`
}

type ZoneMetrics struct {
	Zone            string  `json:"zone"`
	CallDays        float64 `json:"call_days"`
	PlanDRCalls     int64   `json:"plan_dr_calls"`
	ActualDRCalls   int64   `json:"actual_dr_calls"`
	DoctorCallAvg   float64 `json:"doctor_call_avg"`

	TwoPCFreqCovPct *float64 `json:"two_pc_freq_cov_pct"`
	TotalDRCovPct   *float64 `json:"total_dr_cov_pct"`
}

type VisitDistribution struct {
	Total   int64 `json:"total"`
	Visited int64 `json:"visited"`
	Missed  int64 `json:"missed"`
}

// ========== FILTER OPTIONS ==========

type FilterOptionsResponse struct {
	Source    string              `json:"source"`
	Divisions []string            `json:"divisions"`
	Division  string              `json:"division"`
	Options   map[string][]string `json:"options"`
}

// ========== UPLOAD ==========

type UploadRequest struct {
	FileName string
	Size     int64
	File     io.Reader
}

func (r *UploadRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FileName) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file is required",
		})
	} else if !strings.EqualFold(filepath.Ext(r.FileName), ".xlsx") {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: ErrInvalidExtension.Error(),
		})
	}
	if r.Size > MaxUploadSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: ErrFileTooLarge.Error(),
		})
	}
	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file content is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UploadResponse struct {
	FileName  string   `json:"file_name"`
	Sheet     string   `json:"sheet"`
	Rows      int      `json:"rows"`
	Divisions []string `json:"divisions"`
	LoadedAt  string   `json:"loaded_at"`
}
