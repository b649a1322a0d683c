package kpi

import (
	"sort"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
)

// HolidayIndex maps a "division|state" key to its ascending, unique holiday dates
type HolidayIndex struct {
	dates map[string][]time.Time
	sets  map[string]map[time.Time]struct{}
}

// HolidayKey builds the composite lookup key of the index
func HolidayKey(division, state string) string {
	return division + "|" + state
}

// BuildHolidayIndex groups holiday entries by division and state
func BuildHolidayIndex(entries []kpi.HolidayEntry) HolidayIndex {
	idx := HolidayIndex{
		dates: make(map[string][]time.Time),
		sets:  make(map[string]map[time.Time]struct{}),
	}

	for _, e := range entries {
		key := HolidayKey(e.Division, e.StateName)
		day := kpi.TruncateDay(e.Date)

		set, ok := idx.sets[key]
		if !ok {
			set = make(map[time.Time]struct{})
			idx.sets[key] = set
		}
		if _, dup := set[day]; dup {
			continue
		}
		set[day] = struct{}{}
		idx.dates[key] = append(idx.dates[key], day)
	}

	for key := range idx.dates {
		dates := idx.dates[key]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}

	return idx
}

// Dates returns the holidays of a division and state; an unknown key has none
func (h HolidayIndex) Dates(division, state string) []time.Time {
	dates, ok := h.dates[HolidayKey(division, state)]
	if !ok {
		return []time.Time{}
	}
	return dates
}

// IsHoliday checks a single day against the division and state calendar
func (h HolidayIndex) IsHoliday(division, state string, day time.Time) bool {
	set, ok := h.sets[HolidayKey(division, state)]
	if !ok {
		return false
	}
	_, found := set[kpi.TruncateDay(day)]
	return found
}

// Len returns the number of calendar keys
func (h HolidayIndex) Len() int { return len(h.dates) }
