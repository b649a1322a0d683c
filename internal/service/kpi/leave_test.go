package kpi

import (
	"testing"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaveRequest(from, to time.Time) kpi.LeaveRequest {
	return kpi.LeaveRequest{
		EmployeeCode: "1001",
		Division:     "D1",
		State:        "StateA",
		LeaveType:    "Casual Leave",
		Status:       "Approved",
		FromDate:     from,
		ToDate:       to,
	}
}

func TestApportion_SundayHolidayOverlap(t *testing.T) {
	holidays := BuildHolidayIndex([]kpi.HolidayEntry{
		{Division: "D1", StateName: "StateA", Date: date(2025, time.June, 15)},
	})
	req := leaveRequest(date(2025, time.June, 13), date(2025, time.June, 16))

	// Fri, Sat and Mon; Sunday the 15th is skipped once
	assert.Equal(t, 3, Apportion(req, holidays, june2025, BoundaryYearMonth))
}

func TestApportion(t *testing.T) {
	holidays := BuildHolidayIndex([]kpi.HolidayEntry{
		{Division: "D1", StateName: "StateA", Date: date(2025, time.June, 4)},
	})

	tests := []struct {
		name string
		req  kpi.LeaveRequest
		want int
	}{
		{
			name: "entirely before the month",
			req:  leaveRequest(date(2025, time.May, 5), date(2025, time.May, 10)),
			want: 0,
		},
		{
			name: "entirely after the month",
			req:  leaveRequest(date(2025, time.July, 1), date(2025, time.July, 4)),
			want: 0,
		},
		{
			name: "same month of another year",
			req:  leaveRequest(date(2024, time.June, 2), date(2024, time.June, 7)),
			want: 0,
		},
		{
			name: "in month without Sunday or holiday counts every day",
			req:  leaveRequest(date(2025, time.June, 9), date(2025, time.June, 14)),
			want: 6,
		},
		{
			name: "Saturday is chargeable",
			req:  leaveRequest(date(2025, time.June, 14), date(2025, time.June, 14)),
			want: 1,
		},
		{
			name: "single Sunday is zero",
			req:  leaveRequest(date(2025, time.June, 22), date(2025, time.June, 22)),
			want: 0,
		},
		{
			name: "weekday holiday is excluded",
			req:  leaveRequest(date(2025, time.June, 2), date(2025, time.June, 7)),
			want: 5,
		},
		{
			name: "days before the period are not charged",
			req:  leaveRequest(date(2025, time.May, 29), date(2025, time.June, 3)),
			want: 2,
		},
		{
			name: "days after the period are not charged",
			req:  leaveRequest(date(2025, time.June, 27), date(2025, time.July, 2)),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apportion(tt.req, holidays, june2025, BoundaryYearMonth))
		})
	}
}

func TestApportion_NoCalendarForStateSubtractsNothing(t *testing.T) {
	holidays := BuildHolidayIndex([]kpi.HolidayEntry{
		{Division: "D1", StateName: "StateA", Date: date(2025, time.June, 10)},
	})
	req := leaveRequest(date(2025, time.June, 9), date(2025, time.June, 11))
	req.State = "StateB"

	assert.Equal(t, 3, Apportion(req, holidays, june2025, BoundaryYearMonth))
}

func TestApportion_BoundaryRules(t *testing.T) {
	january := kpi.MonthPeriod(2025, time.January)
	// spans December through February: January has 31 days and 4 Sundays
	req := leaveRequest(date(2024, time.December, 28), date(2025, time.February, 3))
	holidays := BuildHolidayIndex(nil)

	assert.Equal(t, 27, Apportion(req, holidays, january, BoundaryYearMonth))
	assert.Equal(t, 0, Apportion(req, holidays, january, BoundaryMonthOnly))
}

func TestApportion_CurrentMonthToDate(t *testing.T) {
	period := kpi.CurrentReportingPeriod(date(2025, time.June, 12))
	req := leaveRequest(date(2025, time.June, 10), date(2025, time.June, 20))

	// 10th to 12th only
	assert.Equal(t, 3, Apportion(req, BuildHolidayIndex(nil), period, BoundaryYearMonth))
}

func TestParseBoundaryRule(t *testing.T) {
	assert.Equal(t, BoundaryMonthOnly, ParseBoundaryRule("month_only"))
	assert.Equal(t, BoundaryYearMonth, ParseBoundaryRule("year_month"))
	assert.Equal(t, BoundaryYearMonth, ParseBoundaryRule(""))
	assert.Equal(t, BoundaryYearMonth, ParseBoundaryRule("bogus"))
}

func TestFilterLeaveRequests(t *testing.T) {
	requests := []kpi.LeaveRequest{
		{EmployeeCode: "1001", LeaveType: "Casual Leave", Status: "Approved"},
		{EmployeeCode: "1001", LeaveType: "Comp Off", Status: "Approved"},
		{EmployeeCode: "1001", LeaveType: "Leave Without Pay", Status: "Approved"},
		{EmployeeCode: "1001", LeaveType: "Unauthorized absence", Status: "Approved"},
		{EmployeeCode: "1002", LeaveType: "Sick Leave", Status: "Rejected"},
		{EmployeeCode: "1002", LeaveType: "Sick Leave", Status: "Manager Applied"},
		{EmployeeCode: "1003", LeaveType: "Sick Leave", Status: "HR Applied", State: "Preset"},
	}
	territories := []kpi.TerritoryState{
		{EmployeeCode: "1001", State: "StateA"},
		{EmployeeCode: "1001", State: "StateZ"},
		{EmployeeCode: "1002", State: "StateB"},
		{EmployeeCode: "1003", State: "StateC"},
	}

	got := FilterLeaveRequests(requests, territories)

	require.Len(t, got, 3)
	assert.Equal(t, "Casual Leave", got[0].LeaveType)
	assert.Equal(t, "StateA", got[0].State)
	assert.Equal(t, "StateB", got[1].State)
	assert.Equal(t, "Preset", got[2].State)
}

func TestSummarizeLeaves(t *testing.T) {
	requests := []kpi.LeaveRequest{
		{EmployeeCode: "1001", Division: "D1", State: "StateA", LeaveType: "Sick Leave",
			FromDate: date(2025, time.June, 2), ToDate: date(2025, time.June, 3), TotalDays: 2},
		{EmployeeCode: "1001", Division: "D1", State: "StateA", LeaveType: "Casual Leave",
			FromDate: date(2025, time.June, 13), ToDate: date(2025, time.June, 16), TotalDays: 4},
		{EmployeeCode: "1002", Division: "D1", State: "StateA", LeaveType: "Casual Leave",
			FromDate: date(2025, time.May, 2), ToDate: date(2025, time.May, 3), TotalDays: 2},
	}
	original := append([]kpi.LeaveRequest{}, requests...)

	summary := SummarizeLeaves(requests, BuildHolidayIndex(nil), june2025, BoundaryYearMonth)

	assert.Equal(t, []string{"Casual Leave", "Sick Leave"}, summary.LeaveTypes)
	assert.Equal(t, 5, summary.ByEmployee["1001"].Total)
	assert.Equal(t, 3, summary.ByEmployee["1001"].ByType["Casual Leave"])
	assert.Equal(t, 2, summary.ByEmployee["1001"].ByType["Sick Leave"])

	// an out-of-month request still yields a summary line, with zero days
	require.Contains(t, summary.ByEmployee, "1002")
	assert.Equal(t, 0, summary.ByEmployee["1002"].Total)

	assert.Equal(t, 3, summary.Requests[1].TotalDays)
	assert.Equal(t, original, requests)
}
