package kpi

import (
	"testing"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/stretchr/testify/assert"
)

func TestBuildHolidayIndex_GroupsSortsAndDedupes(t *testing.T) {
	idx := BuildHolidayIndex([]kpi.HolidayEntry{
		{Division: "D1", StateName: "StateA", Date: date(2025, time.August, 15)},
		{Division: "D1", StateName: "StateA", Date: date(2025, time.January, 26)},
		{Division: "D1", StateName: "StateA", Date: time.Date(2025, time.August, 15, 9, 30, 0, 0, time.UTC)},
		{Division: "D2", StateName: "StateA", Date: date(2025, time.May, 1)},
	})

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []time.Time{date(2025, time.January, 26), date(2025, time.August, 15)}, idx.Dates("D1", "StateA"))
	assert.Equal(t, []time.Time{date(2025, time.May, 1)}, idx.Dates("D2", "StateA"))
}

func TestHolidayIndex_MissingKeyIsEmpty(t *testing.T) {
	idx := BuildHolidayIndex(nil)

	dates := idx.Dates("D9", "Nowhere")
	assert.NotNil(t, dates)
	assert.Empty(t, dates)
	assert.False(t, idx.IsHoliday("D9", "Nowhere", date(2025, time.June, 15)))
}

func TestHolidayIndex_IsHolidayIgnoresClock(t *testing.T) {
	idx := BuildHolidayIndex([]kpi.HolidayEntry{
		{Division: "D1", StateName: "StateA", Date: date(2025, time.June, 15)},
	})

	assert.True(t, idx.IsHoliday("D1", "StateA", time.Date(2025, time.June, 15, 18, 0, 0, 0, time.UTC)))
	assert.False(t, idx.IsHoliday("D1", "StateB", date(2025, time.June, 15)))
	assert.Equal(t, "D1|StateA", HolidayKey("D1", "StateA"))
}
