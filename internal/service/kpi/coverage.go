package kpi

import (
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/shopspring/decimal"
)

type accountKey struct {
	employee string
	account  string
}

// CoverageResult is the per-employee coverage plus the number of counts that had to be clamped
type CoverageResult struct {
	ByEmployee map[string]kpi.Coverage
	Clamped    int
}

// AggregateCoverage derives per-tier and total coverage for every employee that holds at least
// one assignment active at the period end or a submitted visit in the period
func AggregateCoverage(assignments []kpi.VisitAssignment, visits []kpi.VisitRecord, period kpi.Period) CoverageResult {
	tiers := activeTiers(assignments, period.End)
	visitedDays := distinctVisitDays(visits, period)

	type counts struct {
		total   [kpi.MaxTier]int
		met     [kpi.MaxTier]int
		twoPC   int
		visited int
	}
	byEmployee := make(map[string]*counts)
	get := func(emp string) *counts {
		c, ok := byEmployee[emp]
		if !ok {
			c = &counts{}
			byEmployee[emp] = c
		}
		return c
	}

	for key, freq := range tiers {
		get(key.employee).total[freq-1]++
	}

	for key, days := range visitedDays {
		c := get(key.employee)
		c.visited++

		freq, assigned := tiers[key]
		if !assigned {
			continue
		}
		if days >= freq {
			c.met[freq-1]++
		}
		if freq == 2 && days >= 1 {
			c.twoPC++
		}
	}

	result := CoverageResult{ByEmployee: make(map[string]kpi.Coverage, len(byEmployee))}
	for emp, c := range byEmployee {
		var cov kpi.Coverage
		for i := 0; i < kpi.MaxTier; i++ {
			met, clamped := clamp(c.met[i], c.total[i])
			if clamped {
				result.Clamped++
			}
			cov.Tiers[i] = kpi.TierCoverage{
				Total:      c.total[i],
				FreqMet:    met,
				FreqCovPct: percentage(met, c.total[i]),
			}
			cov.TotalAssigned += c.total[i]
		}

		twoPC, clamped := clamp(c.twoPC, c.total[1])
		if clamped {
			result.Clamped++
		}
		cov.TwoPCCov = twoPC
		cov.TwoPCCovPct = percentage(twoPC, c.total[1])

		visited, clamped := clamp(c.visited, cov.TotalAssigned)
		if clamped {
			result.Clamped++
		}
		cov.TotalVisited = visited
		cov.TotalMissed = cov.TotalAssigned - visited
		cov.TotalCovPct = percentage(visited, cov.TotalAssigned)

		result.ByEmployee[emp] = cov
	}

	return result
}

// activeTiers maps each (employee, account) to the frequency of its assignment active at date.
// When several assignments of a pair are active, the highest frequency wins.
func activeTiers(assignments []kpi.VisitAssignment, date time.Time) map[accountKey]int {
	tiers := make(map[accountKey]int)
	for _, a := range assignments {
		if a.Frequency < 1 || a.Frequency > kpi.MaxTier {
			continue
		}
		if !a.IsActiveAt(date) {
			continue
		}
		key := accountKey{employee: a.EmployeeCode, account: a.Account}
		if a.Frequency > tiers[key] {
			tiers[key] = a.Frequency
		}
	}
	return tiers
}

// distinctVisitDays counts distinct submitted, brand-linked visit dates per (employee, account)
func distinctVisitDays(visits []kpi.VisitRecord, period kpi.Period) map[accountKey]int {
	seen := make(map[accountKey]map[time.Time]struct{})
	for _, v := range visits {
		if v.Status != kpi.VisitStatusSubmitted || v.Brand == nil {
			continue
		}
		if !period.Contains(v.Date) {
			continue
		}
		key := accountKey{employee: v.EmployeeCode, account: v.Account}
		dates, ok := seen[key]
		if !ok {
			dates = make(map[time.Time]struct{})
			seen[key] = dates
		}
		dates[kpi.TruncateDay(v.Date)] = struct{}{}
	}

	days := make(map[accountKey]int, len(seen))
	for key, dates := range seen {
		days[key] = len(dates)
	}
	return days
}

func clamp(n, limit int) (int, bool) {
	if n > limit {
		return limit, true
	}
	return n, false
}

var hundred = decimal.NewFromInt(100)

// percentage returns part/total*100 rounded to 2 places; a zero total has no value
func percentage(part, total int) decimal.NullDecimal {
	if total == 0 {
		return decimal.NullDecimal{}
	}
	pct := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
	return decimal.NewNullDecimal(pct)
}
