package kpi

import (
	"sort"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
)

// BoundaryRule decides how a leave request is rejected as outside the report month
type BoundaryRule string

const (
	// BoundaryYearMonth compares full (year, month) pairs
	BoundaryYearMonth BoundaryRule = "year_month"
	// BoundaryMonthOnly compares month numbers only, ignoring the year.
	// Year-spanning requests can be misclassified under this rule.
	BoundaryMonthOnly BoundaryRule = "month_only"
)

// ParseBoundaryRule falls back to BoundaryYearMonth for unknown values
func ParseBoundaryRule(s string) BoundaryRule {
	if BoundaryRule(s) == BoundaryMonthOnly {
		return BoundaryMonthOnly
	}
	return BoundaryYearMonth
}

var (
	// ExcludedLeaveTypes never count as leave days
	ExcludedLeaveTypes = []string{"Comp Off", "Leave Without Pay", "Unauthorized absence"}
	// ApprovedLeaveStatuses are the statuses that make a request chargeable
	ApprovedLeaveStatuses = []string{"Approved", "HR Applied", "Manager Applied"}
)

// Apportion returns how many days of the request are chargeable within the period.
// Sundays and holidays of the request's division and state are not chargeable;
// Saturdays are.
func Apportion(req kpi.LeaveRequest, holidays HolidayIndex, period kpi.Period, rule BoundaryRule) int {
	if outsideReportMonth(req, period, rule) {
		return 0
	}

	from := kpi.TruncateDay(req.FromDate)
	to := kpi.TruncateDay(req.ToDate)
	if from.Before(period.Start) {
		from = period.Start
	}
	if to.After(period.End) {
		to = period.End
	}

	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		if holidays.IsHoliday(req.Division, req.State, d) {
			continue
		}
		days++
	}
	return days
}

func outsideReportMonth(req kpi.LeaveRequest, period kpi.Period, rule BoundaryRule) bool {
	if rule == BoundaryMonthOnly {
		m := int(period.Start.Month())
		from, to := int(req.FromDate.Month()), int(req.ToDate.Month())
		return (from < m && to < m) || (from > m && to > m)
	}
	m := kpi.MonthIndex(period.Start)
	from, to := kpi.MonthIndex(req.FromDate), kpi.MonthIndex(req.ToDate)
	return (from < m && to < m) || (from > m && to > m)
}

// FilterLeaveRequests keeps approved, chargeable leave types and attaches each
// employee's state from the territory mapping
func FilterLeaveRequests(requests []kpi.LeaveRequest, territories []kpi.TerritoryState) []kpi.LeaveRequest {
	stateByEmployee := make(map[string]string)
	for _, t := range territories {
		if _, seen := stateByEmployee[t.EmployeeCode]; seen {
			continue
		}
		stateByEmployee[t.EmployeeCode] = t.State
	}

	excluded := toSet(ExcludedLeaveTypes)
	approved := toSet(ApprovedLeaveStatuses)

	out := make([]kpi.LeaveRequest, 0, len(requests))
	for _, r := range requests {
		if _, skip := excluded[r.LeaveType]; skip {
			continue
		}
		if _, ok := approved[r.Status]; !ok {
			continue
		}
		if r.State == "" {
			r.State = stateByEmployee[r.EmployeeCode]
		}
		out = append(out, r)
	}
	return out
}

// LeaveSummary holds per-employee leave days by leave type
type LeaveSummary struct {
	// LeaveTypes are the observed leave types, sorted
	LeaveTypes []string
	ByEmployee map[string]EmployeeLeave
	// Requests carry the apportioned TotalDays
	Requests []kpi.LeaveRequest
}

// EmployeeLeave is one employee line of the leave pivot
type EmployeeLeave struct {
	ByType map[string]int
	Total  int
}

// SummarizeLeaves apportions every request and pivots the result by leave type.
// The input slice is not modified.
func SummarizeLeaves(requests []kpi.LeaveRequest, holidays HolidayIndex, period kpi.Period, rule BoundaryRule) LeaveSummary {
	summary := LeaveSummary{
		ByEmployee: make(map[string]EmployeeLeave),
		Requests:   make([]kpi.LeaveRequest, len(requests)),
	}

	types := make(map[string]struct{})
	for i, r := range requests {
		r.TotalDays = Apportion(r, holidays, period, rule)
		summary.Requests[i] = r
		types[r.LeaveType] = struct{}{}

		el, ok := summary.ByEmployee[r.EmployeeCode]
		if !ok {
			el = EmployeeLeave{ByType: make(map[string]int)}
		}
		el.ByType[r.LeaveType] += r.TotalDays
		el.Total += r.TotalDays
		summary.ByEmployee[r.EmployeeCode] = el
	}

	for t := range types {
		summary.LeaveTypes = append(summary.LeaveTypes, t)
	}
	sort.Strings(summary.LeaveTypes)

	return summary
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
