package kpi

import (
	"time"

	"github.com/shopspring/decimal"
)

// ========================================
// COLUMN CONTRACT
// ========================================

const (
	ColEmployeeCode         = "Employee Code"
	ColDivisionName         = "Division Name"
	ColFullName             = "Full Name"
	ColTerritoryHeadquarter = "Territory Headquarter"
	ColDesignation          = "Designation"
	ColDOJ                  = "DOJ"
	ColTerritory            = "Territory"
	ColLastSubmittedDCRDate = "Last Submitted DCR Date"
	ColStatus               = "Status"

	ColCallDays      = "Call Days"
	ColPlanDRCalls   = "Plan DR Calls"
	ColActualDRCalls = "Actual DR Calls"
	ColDoctorCallAvg = "Doctor Call Avg"

	Col2PCCov    = "2PC Cov"
	Col2PCCovPct = "2PC Cov %"

	ColTotalDRTotal   = "Total DR Total"
	ColTotalDRVisited = "Total DR Visited"
	ColTotalDRMissed  = "Total DR Missed"
	ColTotalDRCovPct  = "Total DR Cov %"

	ColLeaves    = "Leaves"
	ColTotalDays = "Total Days"

	ColNonFieldWork    = "Non Field Work"
	ColParentTerritory = "Parent Territory"
	ColZone            = "Zone"
	ColABM             = "ABM"
	ColZBM             = "ZBM"
	ColNSM             = "NSM"
	ColDCRMonth        = "DCR Month"
)

// Tier column names, e.g. "2PC DR Total", "2PC Freq Met", "2PC Freq Cov %"
func TierTotalColumn(n int) string  { return tierPrefix(n) + " DR Total" }
func TierMetColumn(n int) string    { return tierPrefix(n) + " Freq Met" }
func TierCovPctColumn(n int) string { return tierPrefix(n) + " Freq Cov %" }

func tierPrefix(n int) string { return string(rune('0'+n)) + "PC" }

// MaxTier is the highest visit frequency per cycle that gets its own columns
const MaxTier = 4

var identityColumns = []string{
	ColEmployeeCode, ColDivisionName, ColFullName, ColTerritoryHeadquarter, ColDesignation,
	ColDOJ, ColTerritory, ColLastSubmittedDCRDate, ColStatus,
}

var callColumns = []string{ColCallDays, ColPlanDRCalls, ColActualDRCalls, ColDoctorCallAvg}

// CoverageColumns returns the per-tier and total coverage columns in export order
func CoverageColumns() []string {
	var cols []string
	for n := 1; n <= MaxTier; n++ {
		cols = append(cols, TierTotalColumn(n), TierMetColumn(n), TierCovPctColumn(n))
		if n == 2 {
			cols = append(cols, Col2PCCov, Col2PCCovPct)
		}
	}
	return append(cols, ColTotalDRTotal, ColTotalDRVisited, ColTotalDRMissed, ColTotalDRCovPct)
}

// Columns builds the stable column list of a designation table
func Columns(includeCoverage bool, activities, leaveTypes []string) []string {
	cols := append([]string{}, identityColumns...)
	cols = append(cols, callColumns...)
	if includeCoverage {
		cols = append(cols, CoverageColumns()...)
	}
	cols = append(cols, ColLeaves)
	cols = append(cols, activities...)
	cols = append(cols, leaveTypes...)
	return append(cols, ColTotalDays)
}

// EnrichmentColumns are appended to the combined table
var EnrichmentColumns = []string{ColNonFieldWork, ColParentTerritory, ColZone, ColABM, ColZBM, ColNSM, ColDCRMonth}

// ========================================
// ROWS
// ========================================

// TierCoverage is the coverage of one visit-frequency tier
type TierCoverage struct {
	Total      int
	FreqMet    int
	FreqCovPct decimal.NullDecimal
}

// Coverage is the per-employee coverage rollup
type Coverage struct {
	Tiers [MaxTier]TierCoverage

	// Relaxed 2PC coverage: 2PC accounts visited at least once
	TwoPCCov    int
	TwoPCCovPct decimal.NullDecimal

	TotalAssigned int
	TotalVisited  int
	TotalMissed   int
	TotalCovPct   decimal.NullDecimal
}

// Tier returns the coverage of tier n (1-based)
func (c Coverage) Tier(n int) TierCoverage {
	if n < 1 || n > MaxTier {
		return TierCoverage{}
	}
	return c.Tiers[n-1]
}

// Row is one employee line of a KPI table
type Row struct {
	EmployeeCode         string
	Division             string
	DivisionName         string
	FullName             string
	TerritoryHeadquarter string
	Designation          Designation
	DOJ                  time.Time
	Territory            string
	LastSubmittedDCRDate *time.Time
	Status               string

	CallDays      decimal.Decimal
	PlanDRCalls   int
	ActualDRCalls int
	DoctorCallAvg decimal.Decimal

	// nil for designations that do not carry coverage
	Coverage *Coverage

	Leaves       int
	ActivityDays map[string]decimal.Decimal
	LeaveDays    map[string]int
	TotalDays    decimal.NullDecimal

	NonFieldWork    decimal.Decimal
	ParentTerritory string
	Zone            string
	ABM             string
	ZBM             string
	NSM             string
	DCRMonth        string
}

// Table is one designation sheet
type Table struct {
	Name        string
	Designation Designation
	Columns     []string
	Rows        []Row
}

// Value returns the cell of the given column; nil marks a missing value
func (r Row) Value(col string) any {
	switch col {
	case ColEmployeeCode:
		return r.EmployeeCode
	case ColDivisionName:
		return r.DivisionName
	case ColFullName:
		return r.FullName
	case ColTerritoryHeadquarter:
		return r.TerritoryHeadquarter
	case ColDesignation:
		return string(r.Designation)
	case ColDOJ:
		if r.DOJ.IsZero() {
			return nil
		}
		return r.DOJ.Format(dateLayout)
	case ColTerritory:
		return r.Territory
	case ColLastSubmittedDCRDate:
		if r.LastSubmittedDCRDate == nil {
			return nil
		}
		return r.LastSubmittedDCRDate.Format("02 January 2006")
	case ColStatus:
		return r.Status
	case ColCallDays:
		return r.CallDays.InexactFloat64()
	case ColPlanDRCalls:
		return r.PlanDRCalls
	case ColActualDRCalls:
		return r.ActualDRCalls
	case ColDoctorCallAvg:
		return r.DoctorCallAvg.InexactFloat64()
	case ColLeaves:
		return r.Leaves
	case ColTotalDays:
		return nullable(r.TotalDays)
	case ColNonFieldWork:
		return r.NonFieldWork.InexactFloat64()
	case ColParentTerritory:
		return optional(r.ParentTerritory)
	case ColZone:
		return optional(r.Zone)
	case ColABM:
		return optional(r.ABM)
	case ColZBM:
		return optional(r.ZBM)
	case ColNSM:
		return optional(r.NSM)
	case ColDCRMonth:
		return optional(r.DCRMonth)
	}

	if v, ok := r.coverageValue(col); ok {
		return v
	}
	if d, ok := r.ActivityDays[col]; ok {
		return d.InexactFloat64()
	}
	if n, ok := r.LeaveDays[col]; ok {
		return n
	}
	return nil
}

func (r Row) coverageValue(col string) (any, bool) {
	isCoverageCol := false
	for _, c := range CoverageColumns() {
		if c == col {
			isCoverageCol = true
			break
		}
	}
	if !isCoverageCol {
		return nil, false
	}
	if r.Coverage == nil {
		return nil, true
	}
	c := r.Coverage
	switch col {
	case Col2PCCov:
		return c.TwoPCCov, true
	case Col2PCCovPct:
		return nullable(c.TwoPCCovPct), true
	case ColTotalDRTotal:
		return c.TotalAssigned, true
	case ColTotalDRVisited:
		return c.TotalVisited, true
	case ColTotalDRMissed:
		return c.TotalMissed, true
	case ColTotalDRCovPct:
		return nullable(c.TotalCovPct), true
	}
	for n := 1; n <= MaxTier; n++ {
		t := c.Tier(n)
		switch col {
		case TierTotalColumn(n):
			return t.Total, true
		case TierMetColumn(n):
			return t.FreqMet, true
		case TierCovPctColumn(n):
			return nullable(t.FreqCovPct), true
		}
	}
	return nil, true
}

func nullable(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
