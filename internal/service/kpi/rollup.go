package kpi

import (
	"sort"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/shopspring/decimal"
)

// RollupSpec parameterises one designation table
type RollupSpec struct {
	Designation     kpi.Designation
	IncludeCoverage bool
}

// RollupSpecs lists the designation tables of a run in export order.
// Coverage is an individual-contributor metric and only the TBM table carries it.
var RollupSpecs = []RollupSpec{
	{Designation: kpi.DesignationTBM, IncludeCoverage: true},
	{Designation: kpi.DesignationABM},
	{Designation: kpi.DesignationZBM},
}

// TableName is the sheet name of a designation table
func TableName(d kpi.Designation) string {
	return "final_KPI_" + string(d)
}

// Inputs are the aggregates a rollup joins on employee code
type Inputs struct {
	Period          kpi.Period
	Employees       []kpi.Employee
	Calls           map[string]CallSummary
	Activity        ActivityAllocation
	ActivityColumns []string
	CallDayActivity string
	Coverage        map[string]kpi.Coverage
	Leaves          LeaveSummary
}

// Compose builds the table of one designation
func Compose(spec RollupSpec, in Inputs) kpi.Table {
	callDayActivity := in.CallDayActivity
	if callDayActivity == "" {
		callDayActivity = DefaultCallDayActivity
	}

	table := kpi.Table{
		Name:        TableName(spec.Designation),
		Designation: spec.Designation,
		Columns:     kpi.Columns(spec.IncludeCoverage, in.ActivityColumns, in.Leaves.LeaveTypes),
	}

	seen := make(map[string]struct{})
	for _, e := range in.Employees {
		if !inRoster(e, spec.Designation, in.Period) {
			continue
		}
		if _, dup := seen[e.EmployeeCode]; dup {
			continue
		}
		seen[e.EmployeeCode] = struct{}{}

		row := kpi.Row{
			EmployeeCode:         e.EmployeeCode,
			Division:             e.Division,
			DivisionName:         e.DivisionName,
			FullName:             e.FullName,
			TerritoryHeadquarter: e.TerritoryHeadquarter,
			Designation:          e.Designation,
			DOJ:                  e.StartDate,
			Territory:            e.Territory,
			LastSubmittedDCRDate: e.LastSubmittedDCRDate,
			Status:               kpi.EmployeeStatusActive,
		}

		allocated := in.Activity.ByEmployee[e.EmployeeCode]
		row.ActivityDays = make(map[string]decimal.Decimal, len(in.ActivityColumns))
		activityTotal := decimal.Zero
		for _, col := range in.ActivityColumns {
			share := allocated[col]
			row.ActivityDays[col] = share
			activityTotal = activityTotal.Add(share)
		}
		row.CallDays = allocated[callDayActivity]

		calls := in.Calls[e.EmployeeCode]
		row.PlanDRCalls = calls.Planned
		row.ActualDRCalls = calls.Actual
		row.DoctorCallAvg = callAverage(calls.Actual, row.CallDays)

		if spec.IncludeCoverage {
			// no assignments: zero counts and no percentages
			cov := in.Coverage[e.EmployeeCode]
			row.Coverage = &cov
		}

		row.LeaveDays = make(map[string]int, len(in.Leaves.LeaveTypes))
		leave, hasLeave := in.Leaves.ByEmployee[e.EmployeeCode]
		for _, t := range in.Leaves.LeaveTypes {
			row.LeaveDays[t] = leave.ByType[t]
		}
		if hasLeave && leave.Total >= 0 {
			row.Leaves = leave.Total
			row.TotalDays = decimal.NewNullDecimal(activityTotal.Add(decimal.NewFromInt(int64(leave.Total))))
		}

		table.Rows = append(table.Rows, row)
	}

	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i].EmployeeCode < table.Rows[j].EmployeeCode
	})

	return table
}

// ComposeAll builds every designation table
func ComposeAll(in Inputs) []kpi.Table {
	tables := make([]kpi.Table, 0, len(RollupSpecs))
	for _, spec := range RollupSpecs {
		tables = append(tables, Compose(spec, in))
	}
	return tables
}

func inRoster(e kpi.Employee, d kpi.Designation, period kpi.Period) bool {
	if !e.Active || e.Designation != d {
		return false
	}
	return e.StartDate.IsZero() || !kpi.TruncateDay(e.StartDate).After(period.End)
}

// callAverage is actual calls per call day, 0.00 when there are no call days
func callAverage(actual int, callDays decimal.Decimal) decimal.Decimal {
	if callDays.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(actual)).Div(callDays).Round(2)
}
