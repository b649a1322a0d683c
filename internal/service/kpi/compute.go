package kpi

import (
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
)

// ComputeOptions are the business settings of one run
type ComputeOptions struct {
	CallDayActivity string
	BoundaryRule    BoundaryRule
}

// Computation is the output of the pure part of a run
type Computation struct {
	Tables   []kpi.Table
	Combined kpi.Table
	// Coverage counts clamped to their assigned totals
	Clamped int
	// Leave requests that survived filtering, with apportioned TotalDays
	Leaves []kpi.LeaveRequest
}

// Compute turns one extract into the designation tables and the combined table.
// It holds no state between calls: identical inputs give identical outputs.
func Compute(ex kpi.Extract, period kpi.Period, opts ComputeOptions) Computation {
	if opts.CallDayActivity == "" {
		opts.CallDayActivity = DefaultCallDayActivity
	}
	if opts.BoundaryRule == "" {
		opts.BoundaryRule = BoundaryYearMonth
	}

	holidays := BuildHolidayIndex(ex.Holidays)

	leaveRequests := FilterLeaveRequests(ex.LeaveRequests, ex.TerritoryStates)
	leaves := SummarizeLeaves(leaveRequests, holidays, period, opts.BoundaryRule)

	coverage := AggregateCoverage(ex.Assignments, ex.Visits, period)

	allocation := AllocateActivityTime(ex.DailyWork, period)
	activityColumns := ActivityColumns(ex.Activities, period, allocation.Observed)

	in := Inputs{
		Period:          period,
		Employees:       ex.Employees,
		Calls:           SummarizeCalls(ex.DailyWork, period),
		Activity:        allocation,
		ActivityColumns: activityColumns,
		CallDayActivity: opts.CallDayActivity,
		Coverage:        coverage.ByEmployee,
		Leaves:          leaves,
	}
	tables := ComposeAll(in)

	combined := Combine(tables, CombineOptions{
		Period:          period,
		CallDayActivity: opts.CallDayActivity,
		ActivityColumns: activityColumns,
		Territories:     ex.TerritoryStates,
		Hierarchy:       NewHierarchy(ex.Hierarchy),
	})

	return Computation{
		Tables:   tables,
		Combined: combined,
		Clamped:  coverage.Clamped,
		Leaves:   leaves.Requests,
	}
}
