package kpi

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Period is the [Start, End] reporting window, both ends inclusive at day granularity
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod normalises both ends to midnight UTC
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: TruncateDay(start), End: TruncateDay(end)}
	if p.End.Before(p.Start) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}

// MonthPeriod returns the whole calendar month
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// CurrentReportingPeriod picks the period a scheduled run reports on.
// On the 1st of a month the previous month is reported in full,
// otherwise the current month up to today.
func CurrentReportingPeriod(today time.Time) Period {
	today = TruncateDay(today)
	if today.Day() == 1 {
		lastOfPrev := today.AddDate(0, 0, -1)
		return MonthPeriod(lastOfPrev.Year(), lastOfPrev.Month())
	}
	return Period{
		Start: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		End:   today,
	}
}

// Contains returns true if the day is within [Start, End]
func (p Period) Contains(t time.Time) bool {
	d := TruncateDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns every day in the period
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Year of the period end, which names the report
func (p Period) Year() int { return p.End.Year() }

// Month of the period start
func (p Period) Month() time.Month { return p.Start.Month() }

// Label renders the period as "Jun 2025"
func (p Period) Label() string { return p.Start.Format("Jan 2006") }

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s]", p.Start.Format(dateLayout), p.End.Format(dateLayout))
}

// TruncateDay drops the clock part and pins the date to UTC
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthIndex orders (year, month) pairs on a single axis
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
