package kpi

import (
	"sort"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/shopspring/decimal"
)

// DefaultCallDayActivity is the activity whose day share counts as a call day
const DefaultCallDayActivity = "Field Work"

var half = decimal.NewFromFloat(0.5)

// CallSummary is the planned versus actual doctor calls of one employee
type CallSummary struct {
	Planned int
	Actual  int
}

// countable drops draft DCR days and days outside the period
func countable(days []kpi.DailyWork, period kpi.Period) []kpi.DailyWork {
	out := make([]kpi.DailyWork, 0, len(days))
	for _, d := range days {
		if d.Status == kpi.DailyWorkStatusSaved {
			continue
		}
		if !period.Contains(d.Date) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SummarizeCalls sums planned and actual doctor calls per employee
func SummarizeCalls(days []kpi.DailyWork, period kpi.Period) map[string]CallSummary {
	summary := make(map[string]CallSummary)
	for _, d := range countable(days, period) {
		s := summary[d.EmployeeCode]
		s.Planned += d.DoctorsPlanned
		s.Actual += d.DoctorCalls
		summary[d.EmployeeCode] = s
	}
	return summary
}

// ActivityAllocation is the per-employee day share of every activity
type ActivityAllocation struct {
	ByEmployee map[string]map[string]decimal.Decimal
	// Observed activity names, sorted
	Observed []string
}

// AllocateActivityTime splits every DCR day between its recorded activities.
// One activity takes the full day, two different activities take half a day each.
// Days without Activity1 carry no share.
func AllocateActivityTime(days []kpi.DailyWork, period kpi.Period) ActivityAllocation {
	alloc := ActivityAllocation{ByEmployee: make(map[string]map[string]decimal.Decimal)}
	observed := make(map[string]struct{})

	add := func(emp, activity string, share decimal.Decimal) {
		m, ok := alloc.ByEmployee[emp]
		if !ok {
			m = make(map[string]decimal.Decimal)
			alloc.ByEmployee[emp] = m
		}
		m[activity] = m[activity].Add(share)
		observed[activity] = struct{}{}
	}

	for _, d := range countable(days, period) {
		a1, a2 := deref(d.Activity1), deref(d.Activity2)
		switch {
		case a1 != "" && a2 != "" && a1 != a2:
			add(d.EmployeeCode, a1, half)
			add(d.EmployeeCode, a2, half)
		case a1 != "":
			add(d.EmployeeCode, a1, decimal.NewFromInt(1))
		}
	}

	for name := range observed {
		alloc.Observed = append(alloc.Observed, name)
	}
	sort.Strings(alloc.Observed)

	return alloc
}

// ActivityColumns lists the activity columns of a run: master activities that are active or
// expired within the period, in master order. An empty master falls back to the observed names.
func ActivityColumns(master []kpi.Activity, period kpi.Period, observed []string) []string {
	var cols []string
	seen := make(map[string]struct{})
	for _, a := range master {
		if a.Name == "" {
			continue
		}
		expiredInPeriod := a.ExpirationDate != nil && period.Contains(*a.ExpirationDate)
		if !a.Active && !expiredInPeriod {
			continue
		}
		if _, dup := seen[a.Name]; dup {
			continue
		}
		seen[a.Name] = struct{}{}
		cols = append(cols, a.Name)
	}

	if len(cols) == 0 {
		return append([]string{}, observed...)
	}
	return cols
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
